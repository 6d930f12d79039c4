package server

import "errors"

var (
	ErrTableInUse       = errors.New("table already in use")
	ErrRoomNotFound     = errors.New("room not found")
	ErrCapacityExceeded = errors.New("entry limit reached")
	ErrSeatOccupied     = errors.New("seat already occupied")
	ErrBadChair         = errors.New("chair index out of range")
	ErrChargeFailed     = errors.New("ticket charge failed")
	ErrNotOccupied      = errors.New("no seated player for target")
	ErrUnauthorized     = errors.New("not permitted")
	ErrTimerRunning     = errors.New("timer already running")
	ErrPersistence      = errors.New("result persistence failed")
)
