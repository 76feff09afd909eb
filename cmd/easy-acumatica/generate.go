package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nioron07/Easy-Acumatica/client"
	"github.com/Nioron07/Easy-Acumatica/schema"
	"github.com/Nioron07/Easy-Acumatica/stubgen"
)

var (
	outDir     string
	outPkg     string
	singleFile bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate model stubs from the endpoint schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := connect(ctx)
		if err != nil {
			return err
		}

		raw, err := c.FetchSchema(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch schema")
		}
		log.Info().Int("bytes", len(raw)).Msg("schema downloaded")

		m, err := schema.Parse(raw)
		if err != nil {
			return err
		}
		log.Info().
			Int("entities", m.Len()).
			Str("fingerprint", schema.Fingerprint(m)).
			Msg("schema parsed")

		layout := stubgen.LayoutPerEntity
		if singleFile {
			layout = stubgen.LayoutSingleFile
		}
		w := stubgen.NewFileWriter(outDir, stubgen.WithLayout(layout))
		if err := w.Write(ctx, m, stubgen.New(stubgen.WithPackage(outPkg))); err != nil {
			return err
		}
		log.Info().Str("dir", outDir).Msg("stubs written")
		return nil
	},
}

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the contract endpoints the instance exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := connect(ctx)
		if err != nil {
			return err
		}
		endpoints, err := c.Endpoints(ctx)
		if err != nil {
			return err
		}
		for _, ep := range endpoints {
			cmd.Printf("%s\t%s\n", ep.Name, ep.Version)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&outDir, "out", "./models", "output directory")
	generateCmd.Flags().StringVar(&outPkg, "package", "models", "package name of the generated stubs")
	generateCmd.Flags().BoolVar(&singleFile, "single-file", false, "write one models.go instead of a file per entity")
}

// connect builds a client from the resolved settings and picks the latest
// endpoint version when none is configured.
func connect(ctx context.Context) (*client.Client, error) {
	cfg := client.Config{
		BaseURL:         viper.GetString("url"),
		Username:        viper.GetString("username"),
		Password:        viper.GetString("password"),
		Tenant:          viper.GetString("tenant"),
		EndpointName:    viper.GetString("endpoint-name"),
		EndpointVersion: viper.GetString("endpoint-version"),
		PersistentLogin: true,
		Logger:          log,
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("no instance URL: set --url or ACUMATICA_URL")
	}

	c, err := client.New(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EndpointVersion != "" {
		return c, nil
	}

	endpoints, err := c.Endpoints(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "discover endpoints")
	}
	for _, ep := range endpoints {
		if ep.Name == cfg.EndpointName && newerVersion(ep.Version, cfg.EndpointVersion) {
			cfg.EndpointVersion = ep.Version
		}
	}
	if cfg.EndpointVersion == "" {
		return nil, errors.Errorf("endpoint %q not found on the instance", cfg.EndpointName)
	}
	log.Info().
		Str("endpoint", cfg.EndpointName).
		Str("version", cfg.EndpointVersion).
		Msg("endpoint version discovered")
	return client.New(cfg)
}

// newerVersion reports whether version a is newer than b. Endpoint versions
// are dot-separated numeric segments ("24.200.001"), so segments compare as
// integers, not as strings.
func newerVersion(a, b string) bool {
	if b == "" {
		return a != ""
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := versionSegment(as, i), versionSegment(bs, i)
		if av != bv {
			return av > bv
		}
	}
	return false
}

func versionSegment(segments []string, i int) int {
	if i >= len(segments) {
		return 0
	}
	n, err := strconv.Atoi(segments[i])
	if err != nil {
		return 0
	}
	return n
}
