package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/nknorg/ballot/api/httpjson/client"
	"github.com/spf13/cobra"
)

var (
	to       string
	proposal uint32
	amount   string
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "give the right to vote to one or more voters",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(); err != nil {
			return err
		}
		targets := splitAddresses(to)
		if len(targets) == 0 {
			return cmd.Usage()
		}
		return callAndPrint("grantright", map[string]interface{}{
			"caller":  caller,
			"targets": targets,
		})
	},
}

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "delegate your vote to another voter",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(); err != nil {
			return err
		}
		if to == "" {
			return cmd.Usage()
		}
		return callAndPrint("delegate", map[string]interface{}{
			"caller": caller,
			"to":     to,
		})
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "vote for a proposal",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(); err != nil {
			return err
		}
		return callAndPrint("vote", map[string]interface{}{
			"caller":   caller,
			"proposal": proposal,
		})
	},
}

var bribeCmd = &cobra.Command{
	Use:   "bribe",
	Short: "escrow a bribe for each voter in --to, paid if they vote for --proposal",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(); err != nil {
			return err
		}
		bribees := splitAddresses(to)
		if len(bribees) == 0 || amount == "" {
			return cmd.Usage()
		}
		for _, bribee := range bribees {
			err := callAndPrint("bribe", map[string]interface{}{
				"caller":   caller,
				"bribee":   bribee,
				"proposal": proposal,
				"amount":   amount,
			})
			if err != nil {
				return err
			}
		}
		return nil
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "withdraw your settled bribes",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCaller(); err != nil {
			return err
		}
		return callAndPrint("withdraw", map[string]interface{}{
			"caller": caller,
		})
	},
}

func init() {
	rootCmd.AddCommand(grantCmd, delegateCmd, voteCmd, bribeCmd, withdrawCmd)

	grantCmd.Flags().StringVar(&to, "to", "", "voter addresses split by comma")
	delegateCmd.Flags().StringVar(&to, "to", "", "delegate address")
	voteCmd.Flags().Uint32Var(&proposal, "proposal", 0, "proposal index")
	bribeCmd.Flags().StringVar(&to, "to", "", "bribee addresses split by comma")
	bribeCmd.Flags().Uint32Var(&proposal, "proposal", 0, "proposal index the bribees should vote for")
	bribeCmd.Flags().StringVar(&amount, "amount", "", "bribe value for each bribee, e.g. 0.005")
}

func splitAddresses(s string) []string {
	var addrs []string
	for _, addr := range strings.Split(s, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

func callAndPrint(method string, params map[string]interface{}) error {
	resp, err := client.Call(Address(), method, 0, params)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return FormatOutput(resp)
}
