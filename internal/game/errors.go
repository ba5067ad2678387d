package game

import "errors"

var (
	ErrBusy            = errors.New("operation_in_progress")
	ErrNotRunning      = errors.New("game_not_running")
	ErrAlreadyRunning  = errors.New("game_already_running")
	ErrRoundActive     = errors.New("round_already_active")
	ErrNoActiveRound   = errors.New("no_active_round")
	ErrAlreadySpinning = errors.New("already_spinning")
	ErrNotSpinning     = errors.New("not_spinning")
)
