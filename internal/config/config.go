package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Barcode  BarcodeConfig `json:"barcode"`
	Prefixes PrefixConfig  `json:"prefixes"`
	Page     PageConfig    `json:"page"`
	Preview  PreviewConfig `json:"preview"`
	Export   ExportConfig  `json:"export"`
	Logging  LoggingConfig `json:"logging"`
}

type BarcodeConfig struct {
	Symbology   string `json:"symbology"`    // "code128" or "qr"
	ModuleWidth int    `json:"module_width"` // pixels per narrow bar
	BarHeight   int    `json:"bar_height"`
	QuietZone   int    `json:"quiet_zone"` // in modules
	ShowText    bool   `json:"show_text"`
	QRSize      int    `json:"qr_size"`
}

// PrefixConfig maps each guest category to its payload prefix
type PrefixConfig struct {
	Regular     string `json:"regular"`
	WithRoom    string `json:"with_room"`
	WithoutRoom string `json:"without_room"`
	Waterpark   string `json:"waterpark"`
}

type PageConfig struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	DPI        int `json:"dpi"`
	CellWidth  int `json:"cell_width"`
	CellHeight int `json:"cell_height"`
	Margin     int `json:"margin"`
	Spacing    int `json:"spacing"`
}

type PreviewConfig struct {
	PerRow      int `json:"per_row"`
	ThumbWidth  int `json:"thumb_width"`
	ThumbHeight int `json:"thumb_height"`
	Padding     int `json:"padding"`
}

type ExportConfig struct {
	OutputDir     string `json:"output_dir"`
	ArchivePrefix string `json:"archive_prefix"`
	DocumentTitle string `json:"document_title"`
	Author        string `json:"author"`
	// MaxGuests caps a single generation
	MaxGuests int `json:"max_guests"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	File   string `json:"file"`
	Caller bool   `json:"caller"`
}

func LoadConfig(path string) (*Config, error) {
	// .env values only fill variables that are not already set
	_ = godotenv.Load()

	config := getDefaultConfig()

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		decoder := json.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	}

	// Environment variables take priority over the file
	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

func (c *Config) Validate() error {
	switch c.Barcode.Symbology {
	case "code128", "qr":
	default:
		return fmt.Errorf("unsupported symbology %q", c.Barcode.Symbology)
	}
	if c.Barcode.ModuleWidth <= 0 || c.Barcode.BarHeight <= 0 {
		return fmt.Errorf("barcode module width and bar height must be positive")
	}
	if err := c.Page.Validate(); err != nil {
		return err
	}
	if c.Preview.PerRow <= 0 {
		return fmt.Errorf("preview per_row must be positive")
	}
	if c.Export.MaxGuests <= 0 {
		return fmt.Errorf("export max_guests must be positive")
	}
	return nil
}

// Validate checks that at least one cell fits on a page
func (p PageConfig) Validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.DPI <= 0 {
		return fmt.Errorf("page width, height and dpi must be positive")
	}
	if p.CellWidth <= 0 || p.CellHeight <= 0 {
		return fmt.Errorf("page cell_width and cell_height must be positive")
	}
	if p.Margin < 0 || p.Spacing < 0 {
		return fmt.Errorf("page margin and spacing cannot be negative")
	}
	if p.Margin+p.CellWidth > p.Width {
		return fmt.Errorf("page cell width %d does not fit a %d px page with margin %d", p.CellWidth, p.Width, p.Margin)
	}
	if p.Height-p.Margin < p.CellHeight+p.Spacing {
		return fmt.Errorf("page height %d cannot hold a single %d px cell with margin %d and spacing %d", p.Height, p.CellHeight, p.Margin, p.Spacing)
	}
	return nil
}

func getDefaultConfig() *Config {
	return &Config{
		Barcode: BarcodeConfig{
			Symbology:   "code128",
			ModuleWidth: 3,
			BarHeight:   150,
			QuietZone:   10,
			ShowText:    true,
			QRSize:      256,
		},
		Prefixes: PrefixConfig{
			Regular:     "REG",
			WithRoom:    "GR",
			WithoutRoom: "NR",
			Waterpark:   "WP",
		},
		// A4 at 300 DPI
		Page: PageConfig{
			Width:      2480,
			Height:     3508,
			DPI:        300,
			CellWidth:  1200,
			CellHeight: 400,
			Margin:     100,
			Spacing:    50,
		},
		Preview: PreviewConfig{
			PerRow:      5,
			ThumbWidth:  200,
			ThumbHeight: 100,
			Padding:     10,
		},
		Export: ExportConfig{
			OutputDir:     ".",
			ArchivePrefix: "guest_barcodes",
			DocumentTitle: "Guest Barcodes",
			Author:        "guestcodes",
			MaxGuests:     1000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "logs/guestcodes.log",
		},
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return getDefaultConfig()
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *Config) {
	// Barcode configuration
	if symbology := os.Getenv("GUESTCODES_SYMBOLOGY"); symbology != "" {
		config.Barcode.Symbology = strings.ToLower(symbology)
	}
	if width := os.Getenv("GUESTCODES_MODULE_WIDTH"); width != "" {
		if w, err := strconv.Atoi(width); err == nil {
			config.Barcode.ModuleWidth = w
		}
	}
	if height := os.Getenv("GUESTCODES_BAR_HEIGHT"); height != "" {
		if h, err := strconv.Atoi(height); err == nil {
			config.Barcode.BarHeight = h
		}
	}

	// Prefixes
	if prefix := os.Getenv("GUESTCODES_PREFIX_REGULAR"); prefix != "" {
		config.Prefixes.Regular = prefix
	}
	if prefix := os.Getenv("GUESTCODES_PREFIX_WITH_ROOM"); prefix != "" {
		config.Prefixes.WithRoom = prefix
	}
	if prefix := os.Getenv("GUESTCODES_PREFIX_WITHOUT_ROOM"); prefix != "" {
		config.Prefixes.WithoutRoom = prefix
	}
	if prefix := os.Getenv("GUESTCODES_PREFIX_WATERPARK"); prefix != "" {
		config.Prefixes.Waterpark = prefix
	}

	// Page configuration
	if dpi := os.Getenv("GUESTCODES_PAGE_DPI"); dpi != "" {
		if d, err := strconv.Atoi(dpi); err == nil {
			config.Page.DPI = d
		}
	}

	// Export configuration
	if dir := os.Getenv("GUESTCODES_OUTPUT_DIR"); dir != "" {
		config.Export.OutputDir = dir
	}

	if limit := os.Getenv("GUESTCODES_MAX_GUESTS"); limit != "" {
		if m, err := strconv.Atoi(limit); err == nil {
			config.Export.MaxGuests = m
		}
	}

	// Logging configuration
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		config.Logging.File = file
	}
}
