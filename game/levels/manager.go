package levels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/keyquest/game/engine"
)

var (
	ErrLevelNotFound  = errors.New("level not found")
	ErrInvalidLevelID = errors.New("invalid level id")
)

// DefaultLevelID is used when a session is created without a level
const DefaultLevelID = "1"

var levelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// extensions are tried in order when resolving a level id to a file
var extensions = []string{".json", ".yaml", ".yml"}

// LevelInfo summarizes a level for listings
type LevelInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Keys        int    `json:"keys"`
	Doors       int    `json:"doors"`
	HasNPC      bool   `json:"has_npc"`
}

// Manager is a directory-backed level catalogue with an in-memory cache
type Manager struct {
	levelDir  string
	defaultID string
	levels    map[string]*engine.LevelDefinition
	mu        sync.RWMutex
}

// NewManager creates a level manager reading from levelDir
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir:  levelDir,
		defaultID: DefaultLevelID,
		levels:    make(map[string]*engine.LevelDefinition),
	}

	if _, err := m.LoadLevel(DefaultLevelID); err != nil {
		infos, listErr := m.ListLevels()
		if listErr != nil || len(infos) == 0 {
			log.WithField("dir", levelDir).Warn("No playable levels found")
		} else {
			m.defaultID = infos[0].ID
		}
	}

	return m, nil
}

// ValidateID checks that a level id is safe to use as a file name
func ValidateID(id string) error {
	if !levelIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidLevelID, id)
	}
	return nil
}

// LoadLevel loads a level by id. Results are cached; callers receive a copy.
func (m *Manager) LoadLevel(id string) (*engine.LevelDefinition, error) {
	id = trimExtension(id)
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if def, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return cloneDefinition(def), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if def, exists := m.levels[id]; exists {
		return cloneDefinition(def), nil
	}

	def, filename, err := m.readLevel(id)
	if err != nil {
		return nil, err
	}
	if _, err := def.Grid(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	m.levels[id] = def
	return cloneDefinition(def), nil
}

// FetchLevel satisfies the session level source
func (m *Manager) FetchLevel(ctx context.Context, id string) (*engine.LevelDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.LoadLevel(id)
}

// ListLevels returns every loadable level in the directory, sorted by id.
// Files that fail to load are skipped.
func (m *Manager) ListLevels() ([]*LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	seen := make(map[string]bool)
	var infos []*LevelInfo

	for _, entry := range entries {
		if entry.IsDir() || !hasLevelExtension(entry.Name()) {
			continue
		}

		id := trimExtension(entry.Name())
		if seen[id] {
			continue
		}

		def, err := m.LoadLevel(id)
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Debug("Skipping level")
			continue
		}
		seen[id] = true

		infos = append(infos, Describe(id, entry.Name(), def))
	}

	sort.Slice(infos, func(i, j int) bool { return lessID(infos[i].ID, infos[j].ID) })
	return infos, nil
}

// Describe builds the listing entry for a definition
func Describe(id, filename string, def *engine.LevelDefinition) *LevelInfo {
	info := &LevelInfo{
		ID:          id,
		Filename:    filename,
		Name:        def.Name,
		Description: def.Description,
	}
	grid, err := def.Grid()
	if err != nil {
		return info
	}
	info.Rows = grid.Rows()
	info.Cols = grid.Cols()
	info.Keys = engine.CountCells(grid, func(c engine.Cell) bool { return c.Category() == engine.CategoryItem })
	info.Doors = engine.CountCells(grid, func(c engine.Cell) bool {
		o, ok := c.(engine.Obstacle)
		return ok && o.IsDoor()
	})
	info.HasNPC = engine.CountCells(grid, func(c engine.Cell) bool { return c == engine.NPC }) > 0
	if info.Name == "" {
		info.Name = "Level " + id
	}
	return info
}

// DefaultID returns the level used when none is requested
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault changes the default level after checking that it loads
func (m *Manager) SetDefault(id string) error {
	if _, err := m.LoadLevel(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = trimExtension(id)
	return nil
}

// SaveLevel validates a level and writes it to <id>.json
func (m *Manager) SaveLevel(id string, def *engine.LevelDefinition) error {
	id = trimExtension(id)
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := engine.ValidateLevel(def); err != nil {
		return err
	}

	stored := cloneDefinition(def)
	stored.ID = id

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	path := filepath.Join(m.levelDir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[id] = stored
	m.mu.Unlock()

	log.WithField("level", id).Info("Level saved")
	return nil
}

// RefreshCache drops every cached level so the next load reads from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = make(map[string]*engine.LevelDefinition)
}

// readLevel finds and decodes the file for id. Caller holds the write lock.
func (m *Manager) readLevel(id string) (*engine.LevelDefinition, string, error) {
	for _, ext := range extensions {
		filename := id + ext
		data, err := os.ReadFile(filepath.Join(m.levelDir, filename))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, filename, fmt.Errorf("failed to read level file: %w", err)
		}

		def, err := Decode(data, filename)
		if err != nil {
			return nil, filename, err
		}
		if def.ID == "" {
			def.ID = id
		}
		return def, filename, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// Decode parses a level file body; the format follows the file extension.
func Decode(data []byte, filename string) (*engine.LevelDefinition, error) {
	var def engine.LevelDefinition
	var err error
	if strings.HasSuffix(filename, ".json") {
		err = json.Unmarshal(data, &def)
	} else {
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return &def, nil
}

// ReadFile reads and decodes a single level file outside any catalogue
func ReadFile(path string) (*engine.LevelDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	def, err := Decode(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if def.ID == "" {
		def.ID = trimExtension(filepath.Base(path))
	}
	return def, nil
}

// IsLevelFile reports whether name has a level file extension
func IsLevelFile(name string) bool {
	return hasLevelExtension(name)
}

func cloneDefinition(def *engine.LevelDefinition) *engine.LevelDefinition {
	out := *def
	out.Cells = make([][]string, len(def.Cells))
	for i, row := range def.Cells {
		out.Cells[i] = append([]string(nil), row...)
	}
	return &out
}

func hasLevelExtension(name string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func trimExtension(name string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// lessID orders numeric ids numerically and everything else lexically
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
