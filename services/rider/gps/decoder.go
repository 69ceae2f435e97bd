// Package gps adapts an NMEA 0183 receiver to the tracker platform API.
package gps

import (
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/piresc/ridertrack/internal/pkg/models"
	"github.com/piresc/ridertrack/services/rider/tracker"
)

const (
	knotsToMps = 0.514444
	// DefaultUEREMeters is the user equivalent range error of a consumer
	// receiver. Accuracy is estimated as HDOP times UERE.
	DefaultUEREMeters = 5.0
)

// Decoder folds NMEA sentences into samples. RMC sentences carry the
// position and produce a sample, GGA sentences contribute accuracy and
// altitude for the same epoch. Not safe for concurrent use.
type Decoder struct {
	uere    float64
	gga     nmea.GGA
	haveGGA bool
}

// NewDecoder creates a decoder. A non positive uere uses DefaultUEREMeters.
func NewDecoder(uere float64) *Decoder {
	if uere <= 0 {
		uere = DefaultUEREMeters
	}
	return &Decoder{uere: uere}
}

// Feed consumes one line and returns a sample when the line completed one.
// Noise, void fixes and unsupported sentences are skipped.
func (d *Decoder) Feed(line string) (tracker.RawSample, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return tracker.RawSample{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return tracker.RawSample{}, false
	}

	switch sentence.DataType() {
	case nmea.TypeGGA:
		gga := sentence.(nmea.GGA)
		if gga.FixQuality == nmea.Invalid || !gga.Time.Valid {
			d.haveGGA = false
			return tracker.RawSample{}, false
		}
		d.gga = gga
		d.haveGGA = true
	case nmea.TypeRMC:
		return d.fromRMC(sentence.(nmea.RMC))
	}
	return tracker.RawSample{}, false
}

func (d *Decoder) fromRMC(rmc nmea.RMC) (tracker.RawSample, bool) {
	if rmc.Validity != nmea.ValidRMC || !rmc.Date.Valid || !rmc.Time.Valid {
		return tracker.RawSample{}, false
	}

	ts := time.Date(2000+rmc.Date.YY, time.Month(rmc.Date.MM), rmc.Date.DD,
		rmc.Time.Hour, rmc.Time.Minute, rmc.Time.Second, rmc.Time.Millisecond*int(time.Millisecond), time.UTC)

	speed := rmc.Speed * knotsToMps
	course := rmc.Course
	sample := tracker.RawSample{
		TimestampMs: ts.UnixMilli(),
		Lat:         rmc.Latitude,
		Lng:         rmc.Longitude,
		SpeedMps:    &speed,
		HeadingDeg:  &course,
		Provider:    string(models.ProviderGPS),
	}

	if d.haveGGA && sameEpoch(d.gga.Time, rmc.Time) {
		if d.gga.HDOP > 0 {
			accuracy := d.gga.HDOP * d.uere
			sample.AccuracyM = &accuracy
		}
		altitude := d.gga.Altitude
		sample.AltitudeM = &altitude
	}
	return sample, true
}

// sameEpoch accepts GGA and RMC stamps up to one second apart, receivers
// differ in which of the two they emit first.
func sameEpoch(a, b nmea.Time) bool {
	diff := secondOfDay(a) - secondOfDay(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func secondOfDay(t nmea.Time) int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}
