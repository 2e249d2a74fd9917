package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"feeltech-tools/fygen-ctl/config"
	"feeltech-tools/fygen-ctl/device"
	"feeltech-tools/fygen-ctl/journal"
	"feeltech-tools/fygen-ctl/panel"
	"feeltech-tools/fygen-ctl/tui"
	"feeltech-tools/fygen-ctl/version"
)

func main() {
	// --- Argument Parsing ---
	mode := flag.String("mode", "serial", "Connection mode: 'serial' or 'sim'")
	port := flag.String("port", config.DefaultSerialPort, "Serial port (e.g., COM3 or /dev/ttyUSB0)")
	pushMs := flag.Int("tick", config.DefaultPushMs, "Parameter push interval in milliseconds")
	journalDir := flag.String("db", config.DefaultJournalDir, "Directory for daily event journals and the preset store")
	scriptFile := flag.String("script", "", "Stimulus script to run after startup (optional)")
	flag.Parse()

	if *mode != "serial" && *mode != "sim" {
		fmt.Println("Invalid mode. Use 'serial' or 'sim'.")
		os.Exit(1)
	}

	// --- Logging Setup ---
	soeLogFile, err := os.OpenFile("fygen_events.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open SOE log file: %v", err)
	}
	defer soeLogFile.Close()
	soeLogger := log.New(soeLogFile, "", log.LstdFlags|log.Lmicroseconds)

	dbLogFile, err := os.OpenFile("fygen_journal.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open journal log file: %v", err)
	}
	defer dbLogFile.Close()
	dbLogger := log.New(dbLogFile, "DB: ", log.LstdFlags|log.Lmicroseconds)

	// --- Device Connection ---
	var gen device.Generator
	if *mode == "serial" {
		fy, err := device.Open(*port)
		if err != nil {
			log.Fatalf("FATAL: Could not open generator on %s: %v", *port, err)
		}
		gen = fy
	} else {
		gen = device.NewSim()
	}
	defer gen.Close()
	soeLogger.Printf("SOE: [STARTUP] fygen-ctl %s connected in %s mode", version.Version, *mode)

	// --- Panel Seeding ---
	pnl := panel.New(gen.ChannelCount())
	if err := pnl.SeedFrom(gen); err != nil {
		log.Fatalf("FATAL: Could not read initial device state: %v", err)
	}

	// --- Preset Store ---
	presets, err := journal.OpenPresets(filepath.Join(*journalDir, "fygen_presets.db"))
	if err != nil {
		log.Fatalf("FATAL: Could not open preset store: %v", err)
	}
	defer presets.Close()

	// --- Coordinated Shutdown Setup ---
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// --- Journal Writer ---
	eventChan := make(chan journal.Event, 100)
	wg.Add(1)
	go journal.Writer(ctx, &wg, eventChan, dbLogger, *journalDir)

	for _, c := range pnl.InitialState() {
		if c.Unit != "" {
			soeLogger.Printf("SOE: [INITIAL_STATE] %s is %s %s", c.Source, c.Value, c.Unit)
		} else {
			soeLogger.Printf("SOE: [INITIAL_STATE] %s is %s", c.Source, c.Value)
		}
		eventChan <- journal.Event{Timestamp: time.Now(), Source: c.Source, Value: c.Value, Unit: c.Unit, Type: journal.TypeInitialState}
	}

	// --- Start TUI ---
	pushEvery := time.Duration(*pushMs) * time.Millisecond
	tuiModel := tui.NewModel(pnl, gen, soeLogger, eventChan, presets, pushEvery)
	p := tea.NewProgram(tuiModel, tea.WithAltScreen())

	// --- Stimulus Script ---
	if *scriptFile != "" {
		file, err := os.Open(*scriptFile)
		if err != nil {
			log.Fatalf("FATAL: Could not open script %s: %v", *scriptFile, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer file.Close()
			panel.RunScript(ctx, file, func(op interface{}) error {
				p.Send(tui.ScriptMsg{Op: op})
				return nil
			}, soeLogger)
		}()
	}

	// This goroutine waits for the TUI to exit.
	var deviceErr error
	go func() {
		finalModel, err := p.Run()
		if err != nil {
			log.Printf("Alas, there's been an error: %v", err)
		}
		if m, ok := finalModel.(tui.Model); ok {
			deviceErr = m.Err
		}
		// When TUI exits for any reason, trigger the shutdown.
		cancel()
	}()

	// --- Graceful Shutdown Handling ---
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-shutdownChan: // Triggered by Ctrl-C
		log.Println("Shutdown signal received. Cleaning up.")
		p.Quit() // The TUI goroutine exits, which in turn calls cancel().
	case <-ctx.Done(): // Triggered if TUI exits first
		log.Println("TUI exited. Shutting down other processes.")
	}

	// Wait for all goroutines to acknowledge shutdown and finish their work.
	log.Println("Waiting for goroutines to finish...")
	wg.Wait()
	log.Println("All goroutines finished. Exiting.")
	close(eventChan)

	if deviceErr != nil {
		log.Fatalf("FATAL: Device communication failed: %v", deviceErr)
	}
}
