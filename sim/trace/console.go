package trace

import (
	"fmt"
	"io"
)

// ConsoleSink prints the event table as records arrive.
type ConsoleSink struct {
	w       io.Writer
	started bool
}

// NewConsoleSink prints to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) Write(rec Record) error {
	if !c.started {
		if _, err := fmt.Fprintln(c.w, "\n--- Event Table ---"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.w, "ID,Time,Station,Event,QueueLen,Busy,Detail"); err != nil {
			return err
		}
		c.started = true
	}
	_, err := fmt.Fprintf(c.w, "%d,%.2f,%s,%s,%d,%d,%s\n",
		rec.EntityID, rec.Timestamp, rec.Station, rec.Kind, rec.QueueLength, rec.ServersBusy, detail(rec))
	return err
}

func (c *ConsoleSink) Close() error {
	return nil
}

func detail(rec Record) string {
	switch {
	case rec.Kind == KindArrival:
		return fmt.Sprintf("since last arrival %.4f", rec.SinceLastArrival)
	case rec.Service == nil:
		return ""
	case rec.Kind == KindServiceStart:
		return fmt.Sprintf("waited %.4f", rec.Service.Wait)
	default:
		return fmt.Sprintf("served %.4f, in system %.4f", rec.Service.Service, rec.Service.Sojourn)
	}
}
