package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pipeline files and inspect the environment",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(a))

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a midas.yaml template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WritePipelineTemplate(path, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", config.DefaultPipelineFile, "Where to write the template")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

// envView is the printable form of config.Config.
type envView struct {
	LogLevel          string  `yaml:"log-level" json:"log_level"`
	LogFormat         string  `yaml:"log-format" json:"log_format"`
	LedgerPath        string  `yaml:"ledger-path" json:"ledger_path"`
	GeneLookupURL     string  `yaml:"gene-lookup-url" json:"gene_lookup_url"`
	GeneLookupTimeout string  `yaml:"gene-lookup-timeout" json:"gene_lookup_timeout"`
	GeneLookupRPS     float64 `yaml:"gene-lookup-rps" json:"gene_lookup_rps"`
	PublishURI        string  `yaml:"publish-uri,omitempty" json:"publish_uri,omitempty"`
	S3KeyID           string  `yaml:"s3-key-id,omitempty" json:"s3_key_id,omitempty"`
	S3Secret          string  `yaml:"s3-secret,omitempty" json:"s3_secret,omitempty"`
	S3Endpoint        string  `yaml:"s3-endpoint,omitempty" json:"s3_endpoint,omitempty"`
	S3Region          string  `yaml:"s3-region,omitempty" json:"s3_region,omitempty"`
	GCSKeyFile        string  `yaml:"gcs-key-file,omitempty" json:"gcs_key_file,omitempty"`
	AzureAccountName  string  `yaml:"azure-account-name,omitempty" json:"azure_account_name,omitempty"`
	AzureAccountKey   string  `yaml:"azure-account-key,omitempty" json:"azure_account_key,omitempty"`
	Neo4jURI          string  `yaml:"neo4j-uri,omitempty" json:"neo4j_uri,omitempty"`
	Neo4jUser         string  `yaml:"neo4j-user,omitempty" json:"neo4j_user,omitempty"`
	Neo4jPassword     string  `yaml:"neo4j-password,omitempty" json:"neo4j_password,omitempty"`
}

func newConfigShowCmd(a *app) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective environment configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := viewConfig(a.cfg, reveal)
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), view)
			}
			data, err := yaml.Marshal(view)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Show sensitive values unmasked")

	return cmd
}

func viewConfig(c *config.Config, reveal bool) envView {
	secret := maskSecret
	if reveal {
		secret = func(s string) string { return s }
	}
	creds := c.StorageCredentials()
	return envView{
		LogLevel:          c.LogLevel,
		LogFormat:         c.LogFormat,
		LedgerPath:        c.LedgerPath,
		GeneLookupURL:     c.GeneLookupURL,
		GeneLookupTimeout: c.GeneLookupTimeout.String(),
		GeneLookupRPS:     c.GeneLookupRPS,
		PublishURI:        c.PublishURI,
		S3KeyID:           secret(creds.S3KeyID),
		S3Secret:          secret(creds.S3Secret),
		S3Endpoint:        creds.S3Endpoint,
		S3Region:          creds.S3Region,
		GCSKeyFile:        creds.GCSKeyFile,
		AzureAccountName:  creds.AzureAccountName,
		AzureAccountKey:   secret(creds.AzureAccountKey),
		Neo4jURI:          c.Neo4j.URI,
		Neo4jUser:         c.Neo4j.User,
		Neo4jPassword:     secret(c.Neo4j.Password),
	}
}

// maskSecret masks a sensitive string, showing first 4 and last 4 chars.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
