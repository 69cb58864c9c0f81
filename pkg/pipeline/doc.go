// SPDX-License-Identifier: MIT

/*
Package pipeline is the embedding surface of the audio-to-haptics
engine. It assembles the decoder, analyzer, band extractor, playback
controller and haptic trigger behind a small facade:

	p, err := pipeline.New(pipeline.Config{
		Path:         "clip.wav",
		OutputDevice: pipeline.SystemDefaultDevice,
		MinFrequency: 20,
		MaxFrequency: 250,
		OnError:      func(err error) { log.Println(err) },
	}, actuator)
	if err != nil { ... }
	defer p.Close()

	p.StartAudioProcessing()
	...
	p.StopAudioProcessing()

Control calls are safe from any goroutine. Notification callbacks
arrive on internal goroutines and must not call back into the
pipeline.
*/
package pipeline
