package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	Resizable bool   `toml:"resizable"`
	VSync     bool   `toml:"vsync"`
}

type RenderConfig struct {
	ShadowMapSize int     `toml:"shadow_map_size"`
	UseSSAO       bool    `toml:"ssao"`
	UseIBL        bool    `toml:"ibl"`
	StrengthIBL   float32 `toml:"strength_ibl"`
	LodBias       float32 `toml:"lod_bias"`
	EnvLodBias    float32 `toml:"env_lod_bias"`
	DebugPasses   bool    `toml:"debug_passes"`
	Wireframe     bool    `toml:"wireframe"`
}

// PostConfig mirrors the post effects constants. Mode 1 shows the rendered
// image and mode 2 the depth buffer.
type PostConfig struct {
	Mode        int     `toml:"mode"`
	DepthScale  float32 `toml:"depth_scale"`
	FogStrength float32 `toml:"fog_strength"`
	Edge        bool    `toml:"edge"`
	Exposure    float32 `toml:"exposure"`
	Gamma       float32 `toml:"gamma"`
}

type CameraConfig struct {
	FovDeg   float32    `toml:"fov_deg"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Speed    float32    `toml:"speed"`
	Position [3]float32 `toml:"position"`
	Ortho    bool       `toml:"orthographic"`
}

type AssetConfig struct {
	CubemapDir string `toml:"cubemap_dir"`
	CubemapSet string `toml:"cubemap_set"`
	ModelDir   string `toml:"model_dir"`
	ModelFile  string `toml:"model_file"`
	TextureDir string `toml:"texture_dir"`
	CapturePNG string `toml:"capture_png"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Post   PostConfig   `toml:"post"`
	Camera CameraConfig `toml:"camera"`
	Assets AssetConfig  `toml:"assets"`
	Log    LogConfig    `toml:"log"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "Deferred Renderer",
			Resizable: true,
			VSync:     true,
		},
		Render: RenderConfig{
			ShadowMapSize: 2048,
			UseSSAO:       true,
			UseIBL:        true,
			StrengthIBL:   1.0,
			LodBias:       2.0,
			DebugPasses:   true,
		},
		Post: PostConfig{
			Mode:       1,
			DepthScale: 1.0,
			Exposure:   1.0,
			Gamma:      2.2,
		},
		Camera: CameraConfig{
			FovDeg:   70,
			Near:     0.01,
			Far:      100,
			Speed:    3,
			Position: [3]float32{0, 0, -2},
		},
		Assets: AssetConfig{
			CubemapDir: "Assets/CubeMap/",
			CubemapSet: "blueroom",
			ModelDir:   "Assets/Models/DamagedHelmet/",
			ModelFile:  "DamagedHelmet.gltf",
			TextureDir: "Assets/Textures/",
			CapturePNG: "captured.png",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig overlays the TOML file at path on DefaultConfig. A missing
// file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		LogInfo("config %q not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// WriteConfig stores cfg as TOML, used to seed an editable config file.
func WriteConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	case c.Render.ShadowMapSize <= 0:
		return fmt.Errorf("shadow_map_size %d must be positive", c.Render.ShadowMapSize)
	case c.Post.Mode != 1 && c.Post.Mode != 2:
		return fmt.Errorf("post mode %d must be 1 (render) or 2 (depth)", c.Post.Mode)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera planes near=%v far=%v are invalid", c.Camera.Near, c.Camera.Far)
	}
	return nil
}
