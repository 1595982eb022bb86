// Package canlog reads and writes CSV CAN frame logs.
package canlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/canviz/candbc/internal/can"
	"github.com/canviz/candbc/internal/metrics"
)

// ErrMissingColumn is returned when a required header column cannot be
// located under any of its accepted names.
var ErrMissingColumn = errors.New("canlog: missing column")

// ErrBadRow is returned when a row's CAN ID or payload does not parse.
var ErrBadRow = errors.New("canlog: bad row")

// Accepted header names per column, matched case-insensitively.
var (
	timeAliases = []string{"time", "timestamp", "t", "ts"}
	busAliases  = []string{"bus", "channel", "interface"}
	idAliases   = []string{"id", "addr", "msg_id", "can_id", "message_id"}
	dataAliases = []string{"data", "payload", "hex", "bytes"}
)

// Load reads frames from a CSV log. The header row selects columns by
// alias; timestamps are relative seconds from the start of the log,
// anchored at the current time. IDs parse as decimal or 0x-prefixed hex;
// payloads as hex with or without spaces. Missing/bad time or bus fields
// degrade to the base time and bus 0; a bad ID or payload fails the load.
func Load(r io.Reader) ([]can.Frame, error) {
	rdr := csv.NewReader(r)
	header, err := rdr.Read()
	if err != nil {
		return nil, fmt.Errorf("canlog: read header: %w", err)
	}
	timeIdx, busIdx, idIdx, dataIdx, err := detectColumns(header)
	if err != nil {
		return nil, err
	}

	base := time.Now().UTC()
	var frames []can.Frame
	for {
		rec, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("canlog: read row %d: %w", len(frames)+2, err)
		}

		ts := base
		if secs, err := strconv.ParseFloat(rec[timeIdx], 64); err == nil {
			ts = base.Add(time.Duration(secs * float64(time.Second)))
		}

		var bus uint8
		if b, err := strconv.ParseUint(rec[busIdx], 10, 8); err == nil {
			bus = uint8(b)
		}

		id, err := parseID(rec[idIdx])
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrBadRow, len(frames)+2, err)
		}

		data, err := can.ParseHex(rec[dataIdx])
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrBadRow, len(frames)+2, err)
		}

		frames = append(frames, can.Frame{Timestamp: ts, Bus: bus, ID: id, Data: data})
	}

	metrics.AddLogRows(len(frames))
	return frames, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string) (frames []can.Frame, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("canlog: open %s: %w", path, err)
	}
	defer func() {
		err = combineErrors(err, f.Close())
	}()
	return Load(f)
}

func parseID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func detectColumns(header []string) (timeIdx, busIdx, idIdx, dataIdx int, err error) {
	if timeIdx, err = findColumn(header, timeAliases); err != nil {
		return
	}
	if busIdx, err = findColumn(header, busAliases); err != nil {
		return
	}
	if idIdx, err = findColumn(header, idAliases); err != nil {
		return
	}
	dataIdx, err = findColumn(header, dataAliases)
	return
}

func findColumn(header []string, names []string) (int, error) {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: tried %v", ErrMissingColumn, names)
}

func combineErrors(errs ...error) (err error) {
	for _, e := range errs {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}
