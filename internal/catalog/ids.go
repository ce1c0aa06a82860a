package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces surrogate identifiers for new rows.
type IDGenerator interface {
	NewID() string
}

// TimeHexIDs renders the current Unix millisecond timestamp as uppercase hex.
//
// Sequential calls are non-decreasing. Two calls within the same millisecond
// return the same value; inserts surface that as ErrIDCollision.
type TimeHexIDs struct {
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// NewID implements IDGenerator.
func (g TimeHexIDs) NewID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 16))
}

// UUIDIDs returns uppercase random (version 4) UUIDs.
type UUIDIDs struct{}

// NewID implements IDGenerator.
func (UUIDIDs) NewID() string {
	return strings.ToUpper(uuid.NewString())
}

// Identifier scheme names as used in configuration.
const (
	IDSchemeTimeHex = "timehex"
	IDSchemeUUID    = "uuid"
)

// IDsFor returns the generator for a configured scheme name.
func IDsFor(scheme string) (IDGenerator, error) {
	switch scheme {
	case IDSchemeTimeHex, "":
		return TimeHexIDs{}, nil
	case IDSchemeUUID:
		return UUIDIDs{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIDScheme, scheme)
	}
}
