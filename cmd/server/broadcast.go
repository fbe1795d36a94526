package main

import (
	"encoding/json"
	"fmt"
	"os"

	"sacred_computing/internal/broadcaster"
	"sacred_computing/internal/config"
	"sacred_computing/internal/packet"
	"sacred_computing/internal/sacred"

	"github.com/spf13/cobra"
)

var (
	flagIntention  string
	flagFrequency  float64
	flagFieldType  string
	flagAmplify    bool
	flagMultiplier float64
	flagDuration   int
	flagOutput     string
)

var broadcastCmd = &cobra.Command{
	Use:   "broadcast",
	Short: "Embed an intention in a network packet and derive its field",
	RunE:  runBroadcast,
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Derive sacred geometry for an intention without broadcasting",
	RunE:  runCalculate,
}

func init() {
	for _, cmd := range []*cobra.Command{broadcastCmd, calculateCmd} {
		cmd.Flags().StringVar(&flagIntention, "intention", "", "intention to broadcast or calculate")
		cmd.Flags().Float64Var(&flagFrequency, "frequency", sacred.SchumannResonance, "frequency in Hz")
		cmd.Flags().StringVar(&flagFieldType, "field-type", string(sacred.FieldTorus), "sacred geometry field type")
		cmd.Flags().BoolVar(&flagAmplify, "amplify", false, "apply divine proportion amplification")
		cmd.Flags().Float64Var(&flagMultiplier, "multiplier", 1, "fibonacci multiplier for amplification")
		cmd.Flags().IntVar(&flagDuration, "duration", 60, "duration in seconds (flower of life)")
		cmd.Flags().StringVar(&flagOutput, "output", "", "file to save the result as JSON")
		cmd.MarkFlagRequired("intention")
	}
}

func newBroadcaster() (*broadcaster.Broadcaster, sacred.FieldType, error) {
	fieldType := sacred.FieldType(flagFieldType)
	if !fieldType.Valid() {
		return nil, "", fmt.Errorf("unknown field type: %s", flagFieldType)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", err
	}

	codec := packet.NewCodec(packet.NewSequence(), cfg.Sacred.SourceDevice)
	return broadcaster.New(codec, sacred.NewEngine()), fieldType, nil
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	b, fieldType, err := newBroadcaster()
	if err != nil {
		return err
	}

	result, err := b.Broadcast(flagIntention, flagFrequency, fieldType, flagAmplify, flagMultiplier)
	if err != nil {
		return err
	}

	fmt.Printf("\nIntention: %s\n", result.Intention)
	fmt.Printf("Frequency: %g Hz\n", result.Frequency)
	fmt.Printf("Field type: %s\n", result.FieldType)
	fmt.Printf("Embedded in packet: %.30s...\n\n", result.PacketBase64)
	fmt.Println("Packet ready for transmission to end users")

	return writeResult(result)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	b, fieldType, err := newBroadcaster()
	if err != nil {
		return err
	}

	geometry, err := b.Calculate(flagIntention, fieldType, flagFrequency, flagAmplify, flagDuration)
	if err != nil {
		return err
	}

	out := &broadcaster.Result{
		Intention:    flagIntention,
		Frequency:    flagFrequency,
		FieldType:    fieldType,
		GeometryData: geometry,
	}
	if flagAmplify {
		amplified, err := sacred.NewEngine().DivineAmplify(flagIntention, flagMultiplier)
		if err != nil {
			return err
		}
		out.AmplifiedData = amplified
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("\nCalculated Sacred Geometry for '%s'\n%s\n", flagIntention, data)

	return writeResult(out)
}

func writeResult(v any) error {
	if flagOutput == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(flagOutput, data, 0o644)
}
