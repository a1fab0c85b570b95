package frame

import (
	"bufio"
	"encoding/json"
	"io"
	"unicode"

	"github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// Decode reads either a JSON array of frames or a single frame object.
func Decode(r io.Reader) ([]profile.FrameDTO, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFrameDecodeFailed, "failed to read frames")
	}

	dec := json.NewDecoder(br)
	switch first {
	case '[':
		var frames []profile.FrameDTO
		if err := dec.Decode(&frames); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFrameDecodeFailed, "failed to decode frame array")
		}
		return frames, nil
	case '{':
		var frame profile.FrameDTO
		if err := dec.Decode(&frame); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFrameDecodeFailed, "failed to decode frame")
		}
		return []profile.FrameDTO{frame}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeFrameDecodeFailed, "expected a JSON array or object, found %q", first)
	}
}

// DecodeFrames decodes and builds every frame in r.
func DecodeFrames(r io.Reader) ([]*Frame, error) {
	dtos, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return BuildAll(dtos)
}

// BuildAll builds every frame of dtos, stopping at the first invalid one.
func BuildAll(dtos []profile.FrameDTO) ([]*Frame, error) {
	frames := make([]*Frame, 0, len(dtos))
	for _, dto := range dtos {
		f, err := Build(dto)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func peekNonSpace(br *bufio.Reader) (rune, error) {
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return 0, err
		}
		if !unicode.IsSpace(r) {
			return r, br.UnreadRune()
		}
	}
}

//Personal.AI order the ending
