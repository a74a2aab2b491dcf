package assembly

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// wavFormat describes the PCM layout of a parsed WAV file.
type wavFormat struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

func (f wavFormat) byteRate() uint32 {
	return f.SampleRate * uint32(f.Channels) * uint32(f.BitsPerSample) / 8
}

func (f wavFormat) blockAlign() uint16 {
	return f.Channels * f.BitsPerSample / 8
}

// parseWAV walks the RIFF chunks of a WAV file and returns its format
// and raw PCM samples. Only uncompressed PCM (format tag 1) is accepted.
func parseWAV(data []byte) (wavFormat, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return wavFormat{}, nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format  wavFormat
		pcm     []byte
		haveFmt bool
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			// Tolerate a truncated final chunk size, common in streamed WAV
			// where the writer could not seek back to patch the header.
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return wavFormat{}, nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return wavFormat{}, nil, fmt.Errorf("unsupported WAV encoding %d (want PCM)", audioFormat)
			}
			format.Channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			format.SampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			format.BitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return wavFormat{}, nil, fmt.Errorf("missing fmt chunk")
	}
	if pcm == nil {
		return wavFormat{}, nil, fmt.Errorf("missing data chunk")
	}
	// Sub-byte sample widths would make blockAlign zero and break the
	// silence and duration math downstream.
	if format.Channels == 0 || format.SampleRate == 0 || format.BitsPerSample < 8 || format.BitsPerSample%8 != 0 {
		return wavFormat{}, nil, fmt.Errorf("invalid format: %d ch, %d Hz, %d bit", format.Channels, format.SampleRate, format.BitsPerSample)
	}
	return format, pcm, nil
}

// encodeWAV writes a canonical 44-byte header followed by the samples.
func encodeWAV(format wavFormat, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, format.Channels)
	binary.Write(&buf, binary.LittleEndian, format.SampleRate)
	binary.Write(&buf, binary.LittleEndian, format.byteRate())
	binary.Write(&buf, binary.LittleEndian, format.blockAlign())
	binary.Write(&buf, binary.LittleEndian, format.BitsPerSample)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// silencePCM returns d worth of zero samples in the given format, rounded
// down to a whole frame.
func silencePCM(format wavFormat, d time.Duration) []byte {
	n := int(float64(format.byteRate()) * d.Seconds())
	n -= n % int(format.blockAlign())
	return make([]byte, n)
}

// pcmDuration is the playback time of pcm in the given format.
func pcmDuration(format wavFormat, pcm []byte) time.Duration {
	return time.Duration(float64(len(pcm)) / float64(format.byteRate()) * float64(time.Second))
}
