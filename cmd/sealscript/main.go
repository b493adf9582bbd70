package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moxune/sealscript/pkg/config"
	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/fragment"
)

var (
	keyPath string
	inPath  string
	verbose bool

	log zerolog.Logger
)

func main() {
	root := &cobra.Command{
		Use:   "sealscript",
		Short: "Encrypt byte payloads into fixed-length CJK message units",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().StringVar(&keyPath, "keys", "", "TOML key file (built-in demo keys when omitted)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	encodeCmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text (or --in file contents) into unit strings, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEncode,
	}
	encodeCmd.Flags().StringVar(&inPath, "in", "", "read the payload from a file instead of the argument")

	decodeCmd := &cobra.Command{
		Use:   "decode [unit...]",
		Short: "Decode unit strings (args or one per stdin line) back into text",
		RunE:  runDecode,
	}

	genkeyCmd := &cobra.Command{
		Use:   "genkey <path>",
		Short: "Generate a fresh key file",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenkey,
	}

	root.AddCommand(encodeCmd, decodeCmd, genkeyCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildEngine() (*fragment.Engine, error) {
	kf := config.Demo()
	if keyPath == "" {
		log.Warn().Msg("no --keys given, using the built-in demo keys")
	} else {
		loaded, err := config.LoadKeyFile(keyPath)
		if err != nil {
			return nil, err
		}
		kf = loaded
	}
	keys, err := kf.KeySet()
	if err != nil {
		return nil, err
	}
	return fragment.NewDefaultEngine(keys)
}

func runEncode(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	var text string
	switch {
	case inPath != "":
		data, err := os.ReadFile(inPath)
		if err != nil {
			return err
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	default:
		return fmt.Errorf("pass the payload as an argument or via --in")
	}

	units, err := engine.EncodeText(text)
	if err != nil {
		return err
	}
	log.Debug().Int("units", len(units)).Int("payload_bytes", len(text)).Msg("encoded")
	for _, u := range units {
		fmt.Println(u)
	}
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	units := args
	if len(units) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				units = append(units, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}

	text, err := engine.DecodeText(units)
	if err != nil {
		return err
	}
	log.Debug().Int("units", len(units)).Msg("decoded")
	fmt.Println(text)
	return nil
}

func runGenkey(cmd *cobra.Command, args []string) error {
	kf, err := config.Generate(crypt.CryptoRandom{})
	if err != nil {
		return err
	}
	if err := kf.WriteFile(args[0]); err != nil {
		return err
	}
	log.Info().Str("path", args[0]).Msg("key file written")
	return nil
}
