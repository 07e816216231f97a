package device

import (
	"io"
	"os"

	"github.com/farmease/farmease-ai/internal/transport"
)

// Options feeds Select.
type Options struct {
	// AudioFile is the capture source; empty means no microphone.
	AudioFile string
	// Synthesizer is used for spoken output on native platforms.
	Synthesizer Synthesizer
	// Sink receives synthesized audio. Defaults to FileSink in the temp dir.
	Sink AudioSink
	// Out receives console read-out. Defaults to stdout.
	Out io.Writer
}

// Select picks the capabilities for platform. Native platforms speak through
// the synthesizer; web and hosts without a synthesizer read out to the
// console.
func Select(platform transport.Platform, opts Options) Capabilities {
	var caps Capabilities

	if opts.AudioFile != "" {
		caps.Microphone = FileMicrophone{Path: opts.AudioFile}
	} else {
		caps.Microphone = NoMicrophone{}
	}

	native := platform == transport.PlatformAndroid || platform == transport.PlatformIOS
	if native && opts.Synthesizer != nil {
		sink := opts.Sink
		if sink == nil {
			sink = FileSink("", "")
		}
		caps.Speech = NewRemoteEngine(opts.Synthesizer, sink)
	} else {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		caps.Speech = NewConsoleEngine(out, DefaultWordDelay)
	}

	logger().Debugw("device capabilities selected", "platform", platform,
		"microphone", opts.AudioFile != "", "remoteSpeech", native && opts.Synthesizer != nil)
	return caps
}
