package inspector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/oshokin/gen-update-config/internal/domain/updateconfig"
	"github.com/oshokin/gen-update-config/internal/logger"
)

// Format is the rendering of the printed config.
type Format string

const (
	// FormatYAML prints the config as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON prints the config exactly as the generator writes it.
	FormatJSON Format = "json"

	// DefaultChannel is the update channel used when none is given.
	DefaultChannel = "stable"

	// maxConfigSize bounds how much of a remote response is read.
	maxConfigSize = 4 << 20
)

var (
	errBadHTTPStatus = errors.New("unexpected http status")
	errUnknownFormat = errors.New("unknown output format")
	errNoSource      = errors.New("config path, url or server and device must be given")
)

// Options contains inputs for the inspector entry point.
type Options struct {
	// Source is a file path or an http(s) URL. When empty the URL is built
	// from Server, Channel and Device.
	Source string
	// Server is the update server base URL.
	Server string
	// Channel is the update channel, such as stable or beta.
	Channel string
	// Device is the device codename.
	Device string
	// Format selects YAML or JSON output.
	Format Format
	// Timeout bounds the HTTP request.
	Timeout time.Duration
	// Out receives the rendered config.
	Out io.Writer
}

// Run loads, validates and prints the config.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "inspector")

	source, err := resolveSource(opts)
	if err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "source", source)

	data, err := load(ctx, source, opts.Timeout)
	if err != nil {
		return err
	}

	cfg, err := updateconfig.Decode(data)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Update config is valid",
		"name", cfg.Name,
		"ab_install_type", cfg.ABInstallType,
		"property_files", len(cfg.ABConfig.PropertyFiles),
	)

	rendered, err := Render(cfg, opts.Format)
	if err != nil {
		return err
	}

	if _, err = opts.Out.Write(rendered); err != nil {
		return fmt.Errorf("%w: %w", updateconfig.ErrIO, err)
	}

	return nil
}

// ChannelURL returns the location an updater client polls: server/channel/device.
func ChannelURL(server, channel, device string) (string, error) {
	base, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("%w: server url: %w", updateconfig.ErrUsage, err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	// Use path.Join to normalize duplicate slashes when composing the URL path.
	base.Path = path.Join(base.Path, channel, device)

	return base.String(), nil
}

// Render prints cfg in the requested format.
func Render(cfg *updateconfig.UpdateConfig, format Format) ([]byte, error) {
	data, err := updateconfig.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML, "":
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return nil, fmt.Errorf("convert to yaml: %w", err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %w %q", updateconfig.ErrUsage, errUnknownFormat, format)
	}
}

func resolveSource(opts *Options) (string, error) {
	if opts.Source != "" {
		return opts.Source, nil
	}

	if opts.Server == "" || opts.Device == "" {
		return "", fmt.Errorf("%w: %w", updateconfig.ErrUsage, errNoSource)
	}

	return ChannelURL(opts.Server, opts.Channel, opts.Device)
}

func load(ctx context.Context, source string, timeout time.Duration) ([]byte, error) {
	if !isRemote(source) {
		data, err := os.ReadFile(filepath.Clean(source))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", updateconfig.ErrIO, err)
		}

		return data, nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug(ctx, "Downloading update config")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrUsage, err)
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrIO, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s, %s: %w", updateconfig.ErrIO, source, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxConfigSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", updateconfig.ErrIO, err)
	}

	return data, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
