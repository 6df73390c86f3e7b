package order

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const (
	trackingPrefix     = "TRK"
	trackingSuffixLen  = 5
	trackingSuffixPool = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// TrackingNumberGenerator produces human-readable tracking identifiers
type TrackingNumberGenerator func(now time.Time) string

// NewTrackingNumber returns "TRK" + unix millis + 5 random base36 characters.
// Uniqueness is checked by the caller against storage.
func NewTrackingNumber(now time.Time) string {
	buf := make([]byte, 0, len(trackingPrefix)+13+trackingSuffixLen)
	buf = append(buf, trackingPrefix...)
	buf = strconv.AppendInt(buf, now.UnixMilli(), 10)

	max := big.NewInt(int64(len(trackingSuffixPool)))
	for i := 0; i < trackingSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS source is broken
			n = big.NewInt(now.UnixNano() % max.Int64())
		}
		buf = append(buf, trackingSuffixPool[n.Int64()])
	}
	return string(buf)
}
