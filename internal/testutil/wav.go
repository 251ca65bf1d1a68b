// Package testutil holds audio fixtures and a scripted capture device for tests.
package testutil

import (
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 8000
	BitDepth   = 16
)

// WriteTone writes a mono 16-bit sine tone of the given length to path.
func WriteTone(path string, d time.Duration) error {
	return WriteToneChannels(path, d, 1)
}

// WriteToneChannels writes the same tone on every channel.
func WriteToneChannels(path string, d time.Duration, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	frames := int(d.Seconds() * SampleRate)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: SampleRate},
		Data:           make([]int, frames*channels),
		SourceBitDepth: BitDepth,
	}
	for i := range buf.Data {
		frame := i / channels
		buf.Data[i] = int(8000 * math.Sin(2*math.Pi*440*float64(frame)/SampleRate))
	}

	enc := wav.NewEncoder(f, SampleRate, BitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
