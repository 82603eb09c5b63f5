// ABOUTME: Entry point for the jacktape transport
// ABOUTME: Parses CLI flags and wires the JACK client, tape decks and reactor
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jacktape/jacktape/internal/jackd"
	"github.com/jacktape/jacktape/internal/reactor"
	"github.com/jacktape/jacktape/internal/tape"
	"github.com/jacktape/jacktape/internal/ui"
	"github.com/jacktape/jacktape/internal/version"
	"github.com/jacktape/jacktape/pkg/audio"
)

var (
	playFile   = flag.String("play", "", "Audio file to play (wav, mp3, flac, ogg, opus)")
	recordFile = flag.String("record", "", "WAV file to record into (default: capture-<id>.wav)")
	inPorts    = flag.String("in", "", "Comma-separated capture source ports (default: system:capture_1,system:capture_2)")
	outPorts   = flag.String("out", "", "Comma-separated playback destination ports, '-' leaves a channel unconnected (default: system:playback_*)")
	clientName = flag.String("name", "jacktape", "JACK client name")
	duration   = flag.Float64("duration", 0, "Recording length in seconds (0 = until stopped)")
	infinite   = flag.Bool("infinite", false, "Keep running after the streams end, until stopped")
	bufferMs   = flag.Int("buffer-ms", 500, "Queue size per channel in milliseconds")
	logFile    = flag.String("log-file", "jacktape.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs = flag.Bool("stream-logs", false, "Alias for -no-tui")
)

func main() {
	flag.Parse()

	recording := *recordFile != "" || *inPorts != "" || *duration > 0
	if *playFile == "" && !recording {
		fmt.Fprintln(os.Stderr, "nothing to do: use -play and/or -record")
		flag.Usage()
		os.Exit(2)
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	client, err := jackd.Open(*clientName)
	if err != nil {
		log.Fatalf("Failed to connect to JACK: %v", err)
	}
	rate := client.SampleRate()
	log.Printf("Connected as %q: %dHz, %d frames per period", client.Name(), rate, client.BufferSize())

	// Queue sizing: buffer-ms worth of samples per channel
	queueBytes := *bufferMs * rate * audio.SampleSize / 1000

	var (
		reader  *tape.Reader
		writer  *tape.Writer
		outputs []string
		inputs  []string
	)

	if *playFile != "" {
		reader, err = tape.NewReader(*playFile, queueBytes)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *playFile, err)
		}
		format := reader.Format()
		log.Printf("Playing %s: %dHz, %d channels, %d frames",
			*playFile, format.SampleRate, format.Channels, reader.FramesNeeded())
		if format.SampleRate != rate {
			log.Printf("WARNING: file is %dHz but the server runs at %dHz; no resampling is done",
				format.SampleRate, rate)
		}

		outputs = parsePorts(*outPorts)
		if len(outputs) == 0 {
			outputs = defaultPorts("system:playback_%d", format.Channels)
		}
		if len(outputs) != format.Channels {
			log.Fatalf("-out names %d ports but %s has %d channels", len(outputs), *playFile, format.Channels)
		}
	}

	recordPath := *recordFile
	if recording {
		inputs = parsePorts(*inPorts)
		if len(inputs) == 0 {
			inputs = defaultPorts("system:capture_%d", 2)
		}
		if recordPath == "" {
			recordPath = fmt.Sprintf("capture-%s.wav", uuid.New().String()[:8])
		}

		frames := uint64(*duration * float64(rate))
		writer, err = tape.NewWriter(recordPath, audio.Format{SampleRate: rate, Channels: len(inputs)}, frames, queueBytes)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", recordPath, err)
		}
		log.Printf("Recording %d channels to %s", len(inputs), recordPath)
	}

	if reader != nil {
		reader.Start()
	}
	if writer != nil {
		writer.Start()
	}

	cfg := reactor.Config{
		Server:    client,
		Inputs:    inputs,
		Outputs:   outputs,
		Unbounded: *infinite,
	}
	if reader != nil {
		cfg.Reader = reader
	}
	if writer != nil {
		cfg.Writer = writer
	}

	r, err := reactor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	if useTUI {
		ctrl := ui.NewControl()
		tuiProg, err = ui.Run(ctrl)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
		go func() {
			<-ctrl.Quit
			log.Printf("Stop requested from TUI")
			r.Stop()
		}()

		identity := ui.StatusMsg{
			ClientName:  client.Name(),
			PlayFile:    *playFile,
			RecordFile:  recordPath,
			SampleRate:  rate,
			OutChannels: len(outputs),
			InChannels:  len(inputs),
		}
		if reader != nil {
			identity.PlayTotal = reader.FramesNeeded()
		}
		if writer != nil {
			identity.RecTotal = writer.FramesNeeded()
		}
		tuiProg.Send(identity)
		go statusLoop(tuiProg, reader, writer, r.Done())
	}

	stats, perr := r.WaitFinished()
	r.Close()
	if tuiProg != nil {
		tuiProg.Quit()
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			log.Printf("Error finalizing %s: %v", recordPath, err)
		} else {
			log.Printf("Recorded %d frames to %s", writer.FramesWritten(), recordPath)
		}
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			log.Printf("Error closing %s: %v", *playFile, err)
		}
	}
	if err := client.Close(); err != nil {
		log.Printf("Error closing JACK client: %v", err)
	}

	log.Printf("Processed %d frames (underruns: %d, overruns: %d)",
		stats.Frames, stats.Underruns, stats.Overruns)
	if perr != nil {
		log.Fatalf("Processing failed: %v", perr)
	}
}

// parsePorts splits a comma-separated port list, dropping empty entries
func parsePorts(s string) []string {
	if s == "" {
		return nil
	}
	var ports []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			ports = append(ports, p)
		}
	}
	return ports
}

// defaultPorts generates system port names, numbered from 1
func defaultPorts(pattern string, n int) []string {
	ports := make([]string, n)
	for i := range ports {
		ports[i] = fmt.Sprintf(pattern, i+1)
	}
	return ports
}

// statusLoop periodically updates the TUI with transport progress
func statusLoop(prog *tea.Program, reader *tape.Reader, writer *tape.Writer, done <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			msg := ui.StatusMsg{}
			if reader != nil {
				msg.PlayFrames = reader.FramesPumped()
				rb := reader.Buffer()
				msg.PlayFill = rb.Length() * 100 / rb.Capacity()
			}
			if writer != nil {
				msg.RecFrames = writer.FramesWritten()
				rb := writer.Buffer()
				msg.RecFill = rb.Length() * 100 / rb.Capacity()
			}
			prog.Send(msg)
		case <-done:
			return
		}
	}
}
