package service

import "errors"

var (
	// ErrNoSession is returned when a player acts without entering the wheel first
	ErrNoSession = errors.New("no active spin session")

	// ErrUserNotFound is returned when the player has no account
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientBalance is returned by repositories when a deduction would overdraw
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoFreeSpins is returned by repositories when no free spin is left to consume
	ErrNoFreeSpins = errors.New("no free spins remaining")
)
