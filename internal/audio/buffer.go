package audio

// Encoding identifies how the bytes of a Buffer are laid out
type Encoding string

const (
	EncodingPCM16 Encoding = "pcm16" // Raw signed 16-bit little-endian frames
	EncodingWAV   Encoding = "wav"
	EncodingMP3   Encoding = "mp3"
)

// FileExtension returns the suffix used for temporary files of this encoding
func (e Encoding) FileExtension() string {
	switch e {
	case EncodingWAV:
		return ".wav"
	case EncodingMP3:
		return ".mp3"
	default:
		return ".raw"
	}
}

// Format describes the PCM layout of captured audio
type Format struct {
	SampleRate      int // Samples per second
	Channels        int // 1 for mono
	FramesPerBuffer int // Frames per device read
}

// FrameBytes returns the number of bytes in one device read
func (f Format) FrameBytes() int {
	return f.FramesPerBuffer * f.Channels * 2
}

// Buffer is an audio payload handed from one stage to the next.
// Exactly one component owns a Buffer at a time.
type Buffer struct {
	Data       []byte
	Encoding   Encoding
	SampleRate int // Zero when the encoding carries its own header
	Channels   int
}

// Len returns the payload size in bytes, zero for a nil buffer
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// IsEmpty reports whether there is nothing to play or transcribe
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// ToWAV wraps a pcm16 buffer in a WAV container; other encodings are returned as-is
func (b *Buffer) ToWAV() (*Buffer, error) {
	if b.Encoding != EncodingPCM16 {
		return b, nil
	}
	data, err := EncodeWAV(b.Data, b.SampleRate, b.Channels)
	if err != nil {
		return nil, err
	}
	return &Buffer{Data: data, Encoding: EncodingWAV, SampleRate: b.SampleRate, Channels: b.Channels}, nil
}
