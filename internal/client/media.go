package client

import (
	"github.com/pion/webrtc/v4"
)

// staticMedia is a MediaSource over pre-built static RTP tracks. Real
// capture devices are a platform capability outside this module; the
// headless client negotiates with static audio/video tracks so the
// handshake and SDP exchange are the real thing.
type staticMedia struct {
	tracks []webrtc.TrackLocal
}

// NewStaticMedia builds one opus audio and one vp8 video track under a
// shared stream id, mirroring a camera+mic stream.
func NewStaticMedia(streamID string) (MediaSource, error) {
	audio, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", streamID,
	)
	if err != nil {
		return nil, err
	}
	video, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"video", streamID,
	)
	if err != nil {
		return nil, err
	}
	return &staticMedia{tracks: []webrtc.TrackLocal{audio, video}}, nil
}

func (m *staticMedia) Tracks() []webrtc.TrackLocal { return m.tracks }

// Close releases the source. Static tracks hold no device handles, so
// there is nothing to stop.
func (m *staticMedia) Close() {}
