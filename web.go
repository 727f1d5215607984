package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func staticDir() string {
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		return dir
	}
	return "static"
}

func runWeb(port int) {
	os.MkdirAll(staticDir(), 0755)

	app := newApp()

	fmt.Printf("\n📊 ML Concept Visualizer running at http://localhost:%d\n", port)
	log.Fatal(app.Listen(fmt.Sprintf(":%d", port)))
}

// newApp builds the fiber application; split from runWeb so handler tests
// can drive it with app.Test.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ML Concept Visualizer",
		DisableStartupMessage: true,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Static("/static", "./"+staticDir())

	// Routes
	app.Get("/", handleIndex)
	app.Get("/api/concepts", handleConcepts)
	app.Get("/api/frame/:concept", handleFrame)
	app.Get("/api/pca", handlePCA)

	// Upgrade to WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(handlePlayback))

	return app
}

// -- HTTP handlers --

func handleIndex(c *fiber.Ctx) error {
	content, err := os.ReadFile("views/index.html")
	if err != nil {
		return c.Status(500).SendString("Template not found. Please create views/index.html")
	}
	c.Set("Content-Type", "text/html")
	return c.Send(content)
}

// handleConcepts returns the closed concept enum plus the tab resolved from
// the request. Unknown `tab` values fall back to the default silently.
func handleConcepts(c *fiber.Ctx) error {
	list := make([]*conceptInfo, 0, len(conceptOrder))
	for _, id := range conceptOrder {
		list = append(list, concepts[id])
	}
	return c.JSON(fiber.Map{
		"concepts": list,
		"default":  defaultConcept,
		"active":   resolveTab(c.Query("tab")),
	})
}

// handleFrame is the stateless derivation endpoint: (concept, params,
// cursor) in the query string, artifact out.
func handleFrame(c *fiber.Ctx) error {
	id := resolveTab(c.Params("concept"))
	info := concepts[id]

	raw := map[string]float64{}
	for _, spec := range info.Params {
		if q := c.Query(spec.Name); q != "" {
			raw[spec.Name] = c.QueryFloat(spec.Name, spec.Default)
		}
	}
	params := clampParams(info, raw)

	min, max, _ := info.bounds(params)
	cursor := clampInt(c.QueryInt("cursor", min), min, max)

	return c.JSON(fiber.Map{
		"concept":  id,
		"cursor":   cursor,
		"artifact": info.derive(params, cursor),
	})
}

// handlePCA serves the fixture-backed panel. A failed fixture load returns
// an error payload and leaves the loader able to retry on the next request.
func handlePCA(c *fiber.Ctx) error {
	info := concepts[ConceptPCA]
	params := clampParams(info, map[string]float64{
		"sample": c.QueryFloat("sample", 0),
	})
	min, max, _ := info.bounds(params)
	cursor := clampInt(c.QueryInt("cursor", min), min, max)

	art := derivePCA(params, cursor).(*PCAArtifact)
	if art.State == "error" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(art)
	}
	return c.JSON(art)
}

// -- Playback sessions --

// session is one client's playback state: the selected concept, its clamped
// parameters, and the shared cursor state machine. Sessions are private per
// connection; nothing is shared between clients.
type session struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	concept Concept
	params  map[string]float64
	player  *player

	wake   chan struct{}
	closed chan struct{}
}

func newSession(conn *websocket.Conn) *session {
	s := &session{
		conn:   conn,
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
	s.selectConcept(defaultConcept)
	return s
}

func (s *session) selectConcept(id Concept) {
	info := concepts[id]
	s.mu.Lock()
	s.concept = id
	s.params = clampParams(info, nil)
	s.player = newConceptPlayer(info, s.params)
	s.mu.Unlock()
}

// notify wakes the tick loop after a state change.
func (s *session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

type frameData struct {
	Concept    Concept            `json:"concept"`
	Cursor     int                `json:"cursor"`
	Min        int                `json:"min"`
	Max        int                `json:"max"`
	Playing    bool               `json:"playing"`
	IntervalMS int                `json:"interval_ms"`
	Params     map[string]float64 `json:"params"`
	Artifact   any                `json:"artifact"`
}

// frameLocked derives the current artifact. Caller holds s.mu.
func (s *session) frameLocked() *frameData {
	info := concepts[s.concept]
	params := make(map[string]float64, len(s.params))
	for k, v := range s.params {
		params[k] = v
	}
	return &frameData{
		Concept:    s.concept,
		Cursor:     s.player.Cursor,
		Min:        s.player.Min,
		Max:        s.player.Max,
		Playing:    s.player.Playing,
		IntervalMS: int(s.player.Interval / time.Millisecond),
		Params:     params,
		Artifact:   info.derive(params, s.player.Cursor),
	}
}

func (s *session) sendFrame() {
	s.mu.Lock()
	frame := s.frameLocked()
	s.mu.Unlock()

	data, err := json.Marshal(map[string]any{"type": "frame", "data": frame})
	if err != nil {
		return
	}
	s.writeMu.Lock()
	s.conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()
}

// run is the animation driver: while the player is playing, advance one
// step per interval and push a frame. The timer is torn down on pause,
// speed change, and connection close, so no timer outlives its session.
func (s *session) run() {
	for {
		s.mu.Lock()
		playing := s.player.Playing
		interval := s.player.Interval
		s.mu.Unlock()

		if !playing {
			select {
			case <-s.wake:
				continue
			case <-s.closed:
				return
			}
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			s.mu.Lock()
			if s.player.Playing {
				s.player.Advance()
			}
			s.mu.Unlock()
			s.sendFrame()
		case <-s.wake:
			timer.Stop()
		case <-s.closed:
			timer.Stop()
			return
		}
	}
}

func handlePlayback(c *websocket.Conn) {
	s := newSession(c)
	go s.run()

	defer func() {
		close(s.closed)
		c.Close()
	}()

	// Send initial state immediately
	s.sendFrame()

	type Message struct {
		Action  string          `json:"action"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	for {
		var msg Message
		if err := c.ReadJSON(&msg); err != nil {
			break
		}
		s.handleAction(msg.Action, msg.Payload)
	}
}

func (s *session) handleAction(action string, payload json.RawMessage) {
	if action == "select" {
		var p struct {
			Concept string `json:"concept"`
		}
		if err := json.Unmarshal(payload, &p); err == nil {
			s.selectConcept(resolveTab(p.Concept))
		}
		s.notify()
		s.sendFrame()
		return
	}

	s.mu.Lock()
	switch action {
	case "play":
		s.player.Play()
	case "pause":
		s.player.Pause()
	case "step":
		s.player.StepForward()
	case "step_back":
		s.player.StepBack()
	case "scrub":
		var p struct {
			To int `json:"to"`
		}
		if err := json.Unmarshal(payload, &p); err == nil {
			s.player.Scrub(p.To)
		}
	case "reset":
		s.player.Reset()
	case "set_speed":
		var p struct {
			MS int `json:"ms"`
		}
		if err := json.Unmarshal(payload, &p); err == nil {
			s.player.SetSpeed(time.Duration(p.MS) * time.Millisecond)
		}
	case "set_param":
		var p struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(payload, &p); err == nil {
			s.setParamLocked(p.Name, p.Value)
		}
	case "refresh":
		// frame sent below
	}
	s.mu.Unlock()

	s.notify()
	s.sendFrame()
}

// setParamLocked clamps and applies one parameter, then re-clamps the
// cursor in case the bounds depend on it. Parameter changes never pause
// playback. Caller holds s.mu.
func (s *session) setParamLocked(name string, value float64) {
	info := concepts[s.concept]
	for _, spec := range info.Params {
		if spec.Name != name {
			continue
		}
		s.params[name] = clampFloat(value, spec.Min, spec.Max)
		min, max, wrap := info.bounds(s.params)
		s.player.Reclamp(min, max, wrap)
		return
	}
}
