// Command lamp-controller drives a street lamp and its WiFi status LED from
// commands received over a serial link, and reports lamp status back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sweeney/lamp-controller/internal/gpio"
	"github.com/sweeney/lamp-controller/internal/logic"
	"github.com/sweeney/lamp-controller/internal/mqtt"
	"github.com/sweeney/lamp-controller/internal/status"
	"github.com/sweeney/lamp-controller/internal/uart"
	"github.com/sweeney/lamp-controller/internal/web"
)

// DefaultLampID identifies this lamp in logs and telemetry.
const DefaultLampID = 1

// readBufSize is the size of a single serial read during a drain.
const readBufSize = 256

type config struct {
	port      string
	baud      int
	lampID    int
	chip      string
	pinR      int
	pinG      int
	pinB      int
	pinStatus int
	poll      time.Duration
	blink     time.Duration
	maxLine   int
	broker    string
	heartbeat time.Duration
	httpAddr  string
}

// loopConfig holds the runLoop tunables.
type loopConfig struct {
	blink     time.Duration
	maxLine   int
	heartbeat time.Duration
}

func main() {
	var cfg config
	flag.StringVar(&cfg.port, "port", uart.DefaultPath, "Serial device connected to the peer")
	flag.IntVar(&cfg.baud, "baud", uart.DefaultBaud, "Serial baud rate")
	flag.IntVar(&cfg.lampID, "lamp-id", DefaultLampID, "Lamp identifier")
	flag.StringVar(&cfg.chip, "chip", gpio.DefaultChip, "GPIO chip name")
	flag.IntVar(&cfg.pinR, "pin-r", gpio.DefaultPinR, "BCM pin for the lamp red channel")
	flag.IntVar(&cfg.pinG, "pin-g", gpio.DefaultPinG, "BCM pin for the lamp green channel")
	flag.IntVar(&cfg.pinB, "pin-b", gpio.DefaultPinB, "BCM pin for the lamp blue channel")
	flag.IntVar(&cfg.pinStatus, "pin-status", gpio.DefaultPinStatus, "BCM pin for the WiFi status LED")
	flag.DurationVar(&cfg.poll, "poll", 10*time.Millisecond, "Control loop interval")
	flag.DurationVar(&cfg.blink, "blink", logic.DefaultBlinkInterval, "Status LED blink interval while connecting")
	flag.IntVar(&cfg.maxLine, "max-line", 512, "Maximum inbound line length in bytes (0 for unbounded)")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker address for telemetry (empty to disable)")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	listPorts := flag.Bool("list-ports", false, "Print available serial ports and exit")

	flag.Parse()

	if *listPorts {
		if err := printPorts(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printPorts() error {
	ports, err := uart.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func run(cfg config) error {
	if cfg.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", cfg.poll)
	}

	port, err := uart.Open(cfg.port, cfg.baud)
	if err != nil {
		return fmt.Errorf("init serial: %w", err)
	}
	defer port.Close()

	lamp, err := gpio.NewRealLamp(cfg.chip, cfg.pinR, cfg.pinG, cfg.pinB)
	if err != nil {
		return fmt.Errorf("init lamp: %w", err)
	}
	defer lamp.Close()

	indicator, err := gpio.NewRealIndicator(cfg.chip, cfg.pinStatus)
	if err != nil {
		return fmt.Errorf("init status led: %w", err)
	}
	defer indicator.Close()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.broker, fmt.Sprintf("lamp-controller-%d", cfg.lampID))
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	clock := clockwork.NewRealClock()
	tracker := status.NewTracker(clock, status.Config{
		LampID:      cfg.lampID,
		Port:        cfg.port,
		Baud:        cfg.baud,
		PollMs:      cfg.poll.Milliseconds(),
		BlinkMs:     cfg.blink.Milliseconds(),
		MaxLine:     cfg.maxLine,
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
	})

	log.Printf("lamp %d ready: port=%s baud=%d rgb=%d/%d/%d status_led=%d",
		cfg.lampID, cfg.port, cfg.baud, cfg.pinR, cfg.pinG, cfg.pinB, cfg.pinStatus)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: poll=%v blink=%v max_line=%d broker=%q heartbeat=%v",
		cfg.poll, cfg.blink, cfg.maxLine, cfg.broker, cfg.heartbeat)

	ticker := clock.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lc := loopConfig{blink: cfg.blink, maxLine: cfg.maxLine, heartbeat: cfg.heartbeat}
	return runLoop(port, lamp, indicator, publisher, publisher, tracker, lc, clock.Now(), ticker.Chan(), sigCh)
}

// runLoop owns the controller. Each tick value is used as the current time.
func runLoop(port uart.Port, lamp gpio.Lamp, indicator gpio.Indicator, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg loopConfig, start time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	l := &lampLoop{
		port:       port,
		lamp:       lamp,
		indicator:  indicator,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		emitter:    uart.NewEmitter(port),
		framer:     logic.NewFramer(cfg.maxLine),
		controller: logic.NewController(),
		blinker:    logic.NewBlinker(cfg.blink, start),
		heartbeat:  logic.NewHeartbeat(cfg.heartbeat, start),
		buf:        make([]byte, readBufSize),
	}

	l.setLamp(false)
	l.setIndicator(false)
	l.updateTracker()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			l.shutdown(signalName(s))
			return nil

		case now := <-tick:
			l.step(now)
		}
	}
}

type lampLoop struct {
	port       uart.Port
	lamp       gpio.Lamp
	indicator  gpio.Indicator
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker

	emitter    *uart.Emitter
	framer     *logic.Framer
	controller *logic.Controller
	blinker    *logic.Blinker
	heartbeat  *logic.Heartbeat

	buf       []byte
	indicated bool
	overflows int
	readErr   error

	// lit is the last lamp level written successfully. It is only
	// meaningful while lampSynced is true.
	lit        bool
	lampSynced bool
	lampErr    error
}

func (l *lampLoop) step(now time.Time) {
	if level := l.blinker.Update(l.controller.State().Phase, now); level != l.indicated {
		l.setIndicator(level)
	}

	l.drain(now)
	l.apply(l.controller.Evaluate(now))

	// A failed lamp write is retried until the output matches the status.
	if on := l.controller.State().Status == logic.StatusOn; !l.lampSynced || on != l.lit {
		l.setLamp(on)
	}

	if hb := l.heartbeat.Check(now, l.controller.Counts()); hb != nil {
		log.Printf("heartbeat: uptime=%v commands=%d unrecognized=%d emissions=%d",
			hb.Uptime, hb.Counts.Commands, hb.Counts.Unrecognized, hb.Counts.Emissions)
		l.updateTracker()
		ev := mqtt.SystemEvent{
			Timestamp: hb.Timestamp,
			Event:     "HEARTBEAT",
		}
		if l.tracker != nil {
			ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(ev); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}

	l.updateTracker()
}

// drain reads the port until a read returns no bytes, applying every
// complete line in arrival order.
func (l *lampLoop) drain(now time.Time) {
	for {
		n, err := l.port.Read(l.buf)
		if n > 0 {
			for _, line := range l.framer.Feed(l.buf[:n]) {
				l.handleLine(line, now)
			}
		}
		if err != nil {
			// A persistent fault is logged once, not on every tick.
			if l.readErr == nil || l.readErr.Error() != err.Error() {
				log.Printf("serial read error: %v", err)
			}
			l.readErr = err
			break
		}
		if l.readErr != nil {
			log.Printf("serial read recovered")
			l.readErr = nil
		}
		if n == 0 {
			break
		}
	}

	if o := l.framer.Overflows(); o != l.overflows {
		log.Printf("line overflow: dropped %d over-long line(s), total=%d", o-l.overflows, o)
		l.overflows = o
	}
}

func (l *lampLoop) handleLine(line string, now time.Time) {
	log.Printf("rx: %s", line)

	before := l.controller.State()
	cmd := logic.Parse(line)
	events := l.controller.Apply(cmd, now)
	after := l.controller.State()

	switch cmd := cmd.(type) {
	case logic.ReportConnectivity:
		if _, ok := cmd.Phase(); !ok {
			log.Printf("unknown wifi state %q", cmd.Raw)
		} else if after.Phase != before.Phase {
			log.Printf("wifi: %s -> %s", before.Phase, after.Phase)
		}
	case logic.ReportLight:
		if after.Light == logic.LightUnknown {
			log.Printf("unknown light reading %q", cmd.Raw)
		}
	case logic.Informational:
		log.Printf("peer mqtt: %s", cmd.Text)
	case logic.Unrecognized:
		log.Printf("unrecognized line %q", cmd.Line)
	}
	if after.Mode != before.Mode {
		log.Printf("mode: %s -> %s", before.Mode, after.Mode)
	}

	l.apply(events)
}

// apply actuates the lamp and then reports each event.
func (l *lampLoop) apply(events []logic.Event) {
	for _, ev := range events {
		log.Printf("event: %s status=%s mode=%s", ev.Reason, ev.Status, ev.Mode)
		l.setLamp(ev.Status == logic.StatusOn)

		if err := l.emitter.Emit(ev.Status); err != nil {
			log.Printf("serial write error: %v", err)
		} else {
			log.Printf("tx: %s%s", uart.PrefixStatus, ev.Status)
		}

		if err := l.publisher.Publish(ev); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

func (l *lampLoop) setLamp(on bool) {
	if err := l.lamp.SetColor(gpio.LampColor(on)); err != nil {
		if l.lampErr == nil || l.lampErr.Error() != err.Error() {
			log.Printf("lamp write error: %v", err)
		}
		l.lampErr = err
		l.lampSynced = false
		return
	}
	if l.lampErr != nil {
		log.Printf("lamp write recovered")
		l.lampErr = nil
	}
	l.lit = on
	l.lampSynced = true
}

func (l *lampLoop) setIndicator(on bool) {
	if err := l.indicator.Set(on); err != nil {
		log.Printf("status led write error: %v", err)
		return
	}
	l.indicated = on
}

func (l *lampLoop) updateTracker() {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.controller.State(), l.indicated, l.controller.Counts(), l.framer.Overflows())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

func (l *lampLoop) shutdown(reason string) {
	event := mqtt.SystemEvent{
		Event:    "SHUTDOWN",
		Reason:   reason,
		Retained: true,
	}
	if l.tracker != nil {
		l.updateTracker()
		snap := l.tracker.Snapshot()
		event.Timestamp = snap.Now
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}

	l.setLamp(false)
	l.setIndicator(false)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
