package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-outbox-sync/models"
)

// Cursor is the keyset position after the last row of a page.
type Cursor struct {
	ServerUpdatedAt time.Time
	Table           models.Table
	RowID           string
}

// Encode renders the cursor as an opaque token: base64 of "micros|table|rowId".
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.ServerUpdatedAt.UnixMicro(), 10) + "|" + string(c.Table) + "|" + c.RowID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by [Cursor.Encode].
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	// row ids may contain '|', table names never do
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return Cursor{}, fmt.Errorf("%w: malformed token", ErrInvalidCursor)
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	return Cursor{
		ServerUpdatedAt: time.UnixMicro(micros).UTC(),
		Table:           models.Table(parts[1]),
		RowID:           parts[2],
	}, nil
}
