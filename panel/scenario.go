package panel

import (
	"bufio"
	"context"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"feeltech-tools/fygen-ctl/config"
)

// Script operations delivered to the update loop. The runner never touches
// panel state itself; each parsed line becomes one of these and is handed to
// the apply callback.
type SetWaveOp struct {
	Channel int
	Name    string
}

type SetParamOp struct {
	Channel int
	Kind    config.Kind
	Raw     int64
}

type SweepOp struct {
	Channel  int
	StartRaw int64
	EndRaw   int64
	Seconds  float64
}

// RunScript executes a stimulus script line by line. Lines are tokenized
// with shell quoting rules so waveform names may be quoted. Bad lines are
// logged and skipped; the script keeps going. Cancelling the context stops
// the run, including mid WAIT.
func RunScript(ctx context.Context, r io.Reader, apply func(op interface{}) error, logger *log.Logger) {
	logger.Println("SCENARIO: Starting script")
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts, err := shlex.Split(line)
		if err != nil || len(parts) == 0 {
			logger.Printf("SCENARIO WARNING: Unparseable line %d: %s", lineNumber, line)
			continue
		}
		command := strings.ToUpper(parts[0])
		args := parts[1:]
		logger.Printf("SCENARIO: Executing line %d: %s", lineNumber, line)
		var op interface{}
		switch command {
		case "WAIT":
			seconds, err := argFloat(args, 0)
			if err != nil {
				logger.Printf("SCENARIO WARNING: Bad WAIT on line %d: %v", lineNumber, err)
				continue
			}
			select {
			case <-time.After(time.Duration(seconds * float64(time.Second))):
			case <-ctx.Done():
				logger.Println("SCENARIO: Cancelled during WAIT.")
				return
			}
			continue
		case "WAVE":
			ch, err := argChannel(args, 0)
			if err != nil || len(args) < 2 {
				logger.Printf("SCENARIO WARNING: Bad WAVE on line %d", lineNumber)
				continue
			}
			op = SetWaveOp{Channel: ch, Name: strings.Join(args[1:], " ")}
		case "FREQ", "DUTY", "AMPL", "OFFS":
			ch, chErr := argChannel(args, 0)
			value, valErr := argFloat(args, 1)
			if chErr != nil || valErr != nil {
				logger.Printf("SCENARIO WARNING: Bad %s on line %d", command, lineNumber)
				continue
			}
			kind := kindFor(command)
			op = SetParamOp{Channel: ch, Kind: kind, Raw: RawFor(config.SpecFor(kind), value)}
		case "PHASE":
			value, err := argFloat(args, 0)
			if err != nil {
				logger.Printf("SCENARIO WARNING: Bad PHASE on line %d", lineNumber)
				continue
			}
			op = SetParamOp{Channel: 0, Kind: config.KindPhase, Raw: RawFor(config.PhaseSpec, value)}
		case "SWEEP":
			ch, chErr := argChannel(args, 0)
			start, startErr := argFloat(args, 1)
			end, endErr := argFloat(args, 2)
			seconds, secErr := argFloat(args, 3)
			if chErr != nil || startErr != nil || endErr != nil || secErr != nil {
				logger.Printf("SCENARIO WARNING: Bad SWEEP on line %d", lineNumber)
				continue
			}
			op = SweepOp{
				Channel:  ch,
				StartRaw: RawFor(config.FrequencySpec, start),
				EndRaw:   RawFor(config.FrequencySpec, end),
				Seconds:  seconds,
			}
		default:
			logger.Printf("SCENARIO WARNING: Unknown command '%s' on line %d", command, lineNumber)
			continue
		}
		if err := apply(op); err != nil {
			logger.Printf("SCENARIO WARNING: Line %d rejected: %v", lineNumber, err)
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			logger.Println("SCENARIO: Cancelled.")
			return
		}
	}
	logger.Println("SCENARIO: Script finished.")
}

// argChannel parses a 1-based channel argument into a 0-based index.
func argChannel(args []string, i int) (int, error) {
	n, err := argFloat(args, i)
	if err != nil {
		return 0, err
	}
	return int(n) - 1, nil
}

func argFloat(args []string, i int) (float64, error) {
	if i >= len(args) {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(args[i], 64)
}

func kindFor(command string) config.Kind {
	switch command {
	case "FREQ":
		return config.KindFrequency
	case "DUTY":
		return config.KindDuty
	case "AMPL":
		return config.KindAmplitude
	case "OFFS":
		return config.KindOffset
	}
	return config.KindPhase
}
