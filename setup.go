package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ecosistema/ecosistema-session/config"
)

// runSetupWizard collects the configuration interactively and writes it to
// the config file. Returns true if setup was successful and the command
// should continue.
func runSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("Ecosistema - Configuración inicial"))
	fmt.Println()

	env := "development"
	storageKind := config.StorageSQLite
	var apiURL, redisAddr string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Entorno").
				Options(
					huh.NewOption("Desarrollo", "development"),
					huh.NewOption("Staging", "staging"),
					huh.NewOption("Producción", "production"),
				).
				Value(&env),
			huh.NewInput().
				Title("URL de la API").
				Description("Déjalo vacío para usar la del entorno").
				Value(&apiURL).
				Validate(validateAPIURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dónde guardar la sesión").
				Options(
					huh.NewOption("Base de datos cifrada (SQLite)", config.StorageSQLite),
					huh.NewOption("Llavero del sistema", config.StorageKeyring),
					huh.NewOption("Redis", config.StorageRedis),
					huh.NewOption("Solo en memoria", config.StorageMemory),
				).
				Value(&storageKind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dirección de Redis").
				Placeholder("localhost:6379").
				Value(&redisAddr),
		).WithHideFunc(func() bool { return storageKind != config.StorageRedis }),
	).WithTheme(huh.ThemeBase16())

	err := form.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nConfiguración cancelada.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"ECOSISTEMA_ENV":     env,
		"ECOSISTEMA_STORAGE": storageKind,
	}
	if apiURL != "" {
		values["ECOSISTEMA_API_URL"] = apiURL
	}
	if redisAddr != "" {
		values["ECOSISTEMA_REDIS_ADDR"] = redisAddr
	}
	if storageKind == config.StorageSQLite {
		values["ECOSISTEMA_TOKEN_KEY"] = generateTokenKey()
	}

	configPath, err := config.WriteEnvFile(values)
	if err != nil {
		fmt.Printf("\nError al guardar la configuración: %v\n", err)
		waitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuración guardada"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()

	return true
}

func generateTokenKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("ecosistema-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}

// validateAPIURL accepts an empty value or an absolute http(s) URL.
func validateAPIURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("URL inválida")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("la URL debe empezar con http:// o https://")
	}
	if u.Host == "" {
		return errors.New("falta el host")
	}
	return nil
}
