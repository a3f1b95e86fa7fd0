// Package config provides centralized configuration management for the application.
package config

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Azure     AzureConfig
	Timesheet TimesheetConfig
	Gmail     GmailConfig
}

// AzureConfig holds Azure DevOps specific configuration.
type AzureConfig struct {
	Organization string
	Project      string
	PAT          string
}

// TimesheetConfig holds the timesheet owner's identity and local paths.
type TimesheetConfig struct {
	// DefaultUser is the display name tasks are assigned to when the
	// caller does not pass one.
	DefaultUser string

	// OwnerEmail identifies the owner's organized meetings for
	// consolidation.
	OwnerEmail string

	// ExcelDir is the directory holding the daily meeting exports.
	ExcelDir string

	// TrackingDir is the directory holding the reviewed-PR tracking files.
	TrackingDir string

	// EnablerUsers are the assignees whose enablers qualify for the
	// dynamic weekly-enabler lookup.
	EnablerUsers []string
}

// GmailConfig holds the IMAP credentials for the emailed meetings JSON.
type GmailConfig struct {
	Account  string
	Password string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("azure.organization", "AZURE_ORGANIZATION")
	v.BindEnv("azure.project", "AZURE_PROJECT")
	v.BindEnv("azure.pat", "AZURE_PAT")
	v.BindEnv("timesheet.user", "TIMESHEET_USER")
	v.BindEnv("timesheet.owner_email", "TIMESHEET_OWNER_EMAIL")
	v.BindEnv("timesheet.excel_path", "EXCEL_PATH")
	v.BindEnv("timesheet.tracking_path", "TRACKING_PATH")
	v.BindEnv("timesheet.enabler_users", "USUARIOS_VALIDOS_HABILITADOR")
	v.BindEnv("gmail.account", "EMAIL_GMAIL")
	v.BindEnv("gmail.password", "EMAIL_GMAIL_PASSWORD")

	v.SetDefault("timesheet.user", "Mildred Moreno")
	v.SetDefault("timesheet.owner_email", "mildred.moreno@innovacionypagos.com.pa")
	v.SetDefault("timesheet.excel_path", "data")
	v.SetDefault("timesheet.tracking_path", "tracking")

	config := &Config{
		Azure: AzureConfig{
			Organization: v.GetString("azure.organization"),
			Project:      v.GetString("azure.project"),
			PAT:          v.GetString("azure.pat"),
		},
		Timesheet: TimesheetConfig{
			DefaultUser:  v.GetString("timesheet.user"),
			OwnerEmail:   v.GetString("timesheet.owner_email"),
			ExcelDir:     v.GetString("timesheet.excel_path"),
			TrackingDir:  v.GetString("timesheet.tracking_path"),
			EnablerUsers: splitUsers(v.GetString("timesheet.enabler_users")),
		},
		Gmail: GmailConfig{
			Account:  v.GetString("gmail.account"),
			Password: v.GetString("gmail.password"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// EncodedPAT returns the personal access token encoded for Basic
// authentication against the Azure DevOps REST API (empty user, PAT as
// password).
func (c *AzureConfig) EncodedPAT() string {
	return base64.StdEncoding.EncodeToString([]byte(":" + c.PAT))
}

// splitUsers parses a comma-separated allow list, dropping empty entries.
func splitUsers(raw string) []string {
	var users []string
	for _, u := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			users = append(users, trimmed)
		}
	}
	return users
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.Azure.Organization == "" {
		missingVars = append(missingVars, "AZURE_ORGANIZATION")
	}
	if config.Azure.PAT == "" {
		missingVars = append(missingVars, "AZURE_PAT")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateGmailConfig validates the IMAP-specific configuration; only
// required when meetings are fetched from email.
func ValidateGmailConfig(config *Config) error {
	var missingVars []string

	if config.Gmail.Account == "" {
		missingVars = append(missingVars, "EMAIL_GMAIL")
	}
	if config.Gmail.Password == "" {
		missingVars = append(missingVars, "EMAIL_GMAIL_PASSWORD")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
