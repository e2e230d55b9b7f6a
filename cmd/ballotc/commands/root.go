package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/nknorg/ballot/config"
	"github.com/spf13/cobra"
)

// Globals
var (
	ip     string
	port   string
	caller string
)

var rootCmd = &cobra.Command{
	Use:     "ballotc",
	Version: config.Version,
	Short:   "ballotc - A cli tool for the ballot ledger",
	Long:    "",
}

func RootCmd() *cobra.Command {
	return rootCmd
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&ip, "ip", "localhost", "node's ip address")
	rootCmd.PersistentFlags().StringVar(&port, "port", strconv.Itoa(int(config.Parameters.HttpJsonPort)), "node's json rpc port")
	rootCmd.PersistentFlags().StringVar(&caller, "caller", "", "address the operation is sent from")
}

func Address() string {
	return "http://" + net.JoinHostPort(ip, port)
}

func FormatOutput(o []byte) error {
	var out bytes.Buffer
	err := json.Indent(&out, o, "", "\t")
	if err != nil {
		return err
	}
	out.Write([]byte("\n"))
	_, err = out.WriteTo(os.Stdout)

	return err
}

func requireCaller() error {
	if caller == "" {
		return fmt.Errorf("--caller is required")
	}
	return nil
}
