package server

import "fmt"

// blindLadder is the stake ladder the round clock advances through. The
// clock stops and closes the room once the final level expires.
var blindLadder = []string{
	"100/200",
	"200/400",
	"300/600",
	"400/800",
	"600/1200",
	"800/1600",
	"1000/2000",
	"1500/3000",
	"2000/4000",
	"3000/6000",
}

// formatClock renders remaining seconds as M:SS for the tick broadcast.
func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
