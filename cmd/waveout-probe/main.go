// ABOUTME: Probe tool that checks which output backends work on this machine
// ABOUTME: Opens each backend, plays a short burst of tone, and reports buffer completions
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/Sendspin/waveout/pkg/audio/output"
	"github.com/Sendspin/waveout/pkg/waveout"
)

var (
	backends = flag.String("backends", strings.Join(output.Backends(), ","), "Comma-separated backends to probe")
	duration = flag.Duration("duration", 500*time.Millisecond, "How long to play on each backend")
	wavFile  = flag.String("wav-file", "probe.wav", "Capture file for the wav backend")
)

type result struct {
	backend string
	refills uint64
	err     error
}

func main() {
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	fmt.Println("=== waveout backend probe ===")
	fmt.Printf("Format: %s, %d buffers x %d frames\n\n",
		audio.DefaultFormat, waveout.DefaultBufferCount, waveout.DefaultFramesPerBuffer)

	failed := 0
	for _, name := range strings.Split(*backends, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r := probe(name, *duration)
		if r.err != nil {
			failed++
			fmt.Printf("  %-10s FAIL  %v\n", r.backend, r.err)
			continue
		}
		fmt.Printf("  %-10s OK    %d refills\n", r.backend, r.refills)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func probe(name string, d time.Duration) result {
	r := result{backend: name}

	device, err := output.New(name, output.Options{
		FramesPerBuffer: waveout.DefaultFramesPerBuffer,
		WAVPath:         *wavFile,
	})
	if err != nil {
		r.err = err
		return r
	}

	session := waveout.NewSession(device, waveout.Config{
		OnError: func(err error) {
			log.Printf("%s: %v", name, err)
		},
	})
	defer session.Release()

	events := make(chan output.Event, session.EventCapacity())
	if err := device.Open(audio.DefaultFormat, events); err != nil {
		r.err = fmt.Errorf("open: %w", err)
		return r
	}

	ctx, cancel := context.WithTimeout(context.Background(), d+2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx, events)
	}()

	time.Sleep(d)

	if err := device.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
	if err := <-done; err != nil {
		r.err = fmt.Errorf("session: %w", err)
		return r
	}

	r.refills = session.Stats().Refills
	if r.refills == 0 {
		r.err = fmt.Errorf("no buffer completed within %v", d)
	}
	return r
}
