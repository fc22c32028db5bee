package filesim

import "time"

// currentTime returns the current wall-clock time as Unix seconds, the
// fixed-width representation stored in CreatedAt/ModifiedAt.
func currentTime() int64 {
	return time.Now().Unix()
}
