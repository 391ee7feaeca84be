package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tistre/simple-oauth-login/internal/auth"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// BaseURL es la URL pública del servicio, usada para armar
		// redirect URIs por defecto (ej: https://login.example.com).
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Session struct {
		CookieName string `yaml:"cookie_name"`
		Domain     string `yaml:"domain"`
		SameSite   string `yaml:"samesite"`
		Secure     bool   `yaml:"secure"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`

	Cache struct {
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	SimpleOAuth SimpleOAuth `yaml:"simple_oauth"`
}

// SimpleOAuth es la sección de autenticación: providers, fake login y
// usuarios estáticos. oauth_configs preserva el orden del documento porque
// /login usa el primer provider configurado.
type SimpleOAuth struct {
	OAuthConfigs OrderedSections `yaml:"oauth_configs"`
	FakeOAuth    map[string]any  `yaml:"fake_oauth"`
	UserDetails  map[string]any  `yaml:"user_details"`
}

// OrderedSections decodifica un mapping YAML de secciones (nombre ->
// mapping) preservando el orden de las keys en el documento. Entradas que no
// son mappings se ignoran de forma tolerante.
type OrderedSections struct {
	Order []string
	Items map[string]map[string]any
}

func (o *OrderedSections) UnmarshalYAML(node *yaml.Node) error {
	o.Order = nil
	o.Items = map[string]map[string]any{}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil || key == "" {
			continue
		}
		var val map[string]any
		if err := node.Content[i+1].Decode(&val); err != nil || val == nil {
			continue
		}
		if _, dup := o.Items[key]; dup {
			continue
		}
		o.Order = append(o.Order, key)
		o.Items[key] = val
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "oauth_session"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "12h"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "lax"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "12h"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return &c, nil
}

// SessionTTL parsea el TTL de sesión configurado.
func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 0, fmt.Errorf("session ttl: %w", err)
	}
	return d, nil
}

// Settings arma el holder de configuración de autenticación a partir de la
// sección simple_oauth, restaurando el orden de providers del documento.
func (c *Config) Settings() *auth.Settings {
	configs := make(map[string]any, len(c.SimpleOAuth.OAuthConfigs.Items))
	for name, section := range c.SimpleOAuth.OAuthConfigs.Items {
		configs[name] = section
	}

	params := map[string]any{
		"oauth_configs": configs,
		"fake_oauth":    anyMap(c.SimpleOAuth.FakeOAuth),
		"user_details":  anyMap(c.SimpleOAuth.UserDetails),
	}

	s := auth.NewSettings(params)
	s.SetServiceOrder(c.SimpleOAuth.OAuthConfigs.Order)
	return s
}

// anyMap evita que un nil map tipado llegue como valor no-nil en el any.
func anyMap(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}
