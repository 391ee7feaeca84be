package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	APIKey    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		baseURL = envOr("LOGIN_SVC_URL", "http://localhost:8080")
		apiKey  = envOr("LOGIN_SVC_KEY", "")
		out     = envOr("LOGIN_SVC_OUT", "text")
		timeout = 30 * time.Second
	)

	httpClient := &http.Client{
		Timeout: timeout,
		// No seguir redirects: queremos ver los 302 del login tal cual
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	cl := &client{BaseURL: baseURL, APIKey: apiKey, OutFormat: out, HTTP: httpClient}

	root := &cobra.Command{
		Use:   "loginctl",
		Short: "CLI para consultar el servicio de login",
		// los flags se parsean después de armar cl
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cl.BaseURL, cl.APIKey, cl.OutFormat = baseURL, apiKey, out
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env LOGIN_SVC_URL)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", apiKey, "API key para autenticación Bearer (env LOGIN_SVC_KEY)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Chequea /healthz",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz")
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("health fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, []byte(`{"ok":true}`))
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario resuelto con la API key (vía /whoami)",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				return fmt.Errorf("falta API key (flag --api-key o env LOGIN_SVC_KEY)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/whoami")
			if err != nil {
				return err
			}
			if status == http.StatusFound {
				return fmt.Errorf("no autenticado: API key rechazada")
			}
			if status/100 != 2 {
				return fmt.Errorf("whoami fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	root.AddCommand(healthCmd, whoamiCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
