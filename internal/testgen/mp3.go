package testgen

import (
	"bytes"
	"time"
)

// Every generated frame is MPEG-1 Layer III, 128kbps, 44.1kHz, joint stereo,
// no CRC and no padding.
var mp3FrameHeader = []byte{0xFF, 0xFB, 0x90, 0x64}

const (
	// MP3FrameSize is the size in bytes of one generated frame.
	MP3FrameSize = 417
	// MP3FrameDuration is the playback time of one generated frame (1152
	// samples at 44.1kHz).
	MP3FrameDuration = time.Second * 1152 / 44100
)

// MP3Options configures a generated MP3 segment.
type MP3Options struct {
	Frames  int  // defaults to 10
	WithID3 bool // prepend an ID3v2 tag
	Fill    byte // payload byte, so segments can be told apart after concatenation
}

// GenerateMP3 returns a decodable MP3 stream of silent-looking frames.
func GenerateMP3(opts MP3Options) []byte {
	frames := opts.Frames
	if frames <= 0 {
		frames = 10
	}

	var buf bytes.Buffer
	if opts.WithID3 {
		buf.Write(ID3Tag(64))
	}
	payload := bytes.Repeat([]byte{opts.Fill}, MP3FrameSize-len(mp3FrameHeader))
	for i := 0; i < frames; i++ {
		buf.Write(mp3FrameHeader)
		buf.Write(payload)
	}
	return buf.Bytes()
}

// ID3Tag returns an ID3v2.3 tag with a zeroed body of the given size.
func ID3Tag(size int) []byte {
	tag := []byte{'I', 'D', '3', 3, 0, 0}
	// Tag sizes are synchsafe: 7 bits per byte.
	tag = append(tag,
		byte(size>>21)&0x7F,
		byte(size>>14)&0x7F,
		byte(size>>7)&0x7F,
		byte(size)&0x7F,
	)
	return append(tag, make([]byte, size)...)
}
