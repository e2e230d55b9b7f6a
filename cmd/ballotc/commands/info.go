package commands

import (
	"fmt"
	"os"

	"github.com/nknorg/ballot/api/httpjson/client"
	"github.com/nknorg/ballot/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "show ballot information",
	Long:  "",
	RunE: func(cmd *cobra.Command, args []string) error {
		showusage := true
		cmd.Flags().Visit(func(name *pflag.Flag) {
			showusage = false
		})
		if showusage {
			return cmd.Usage()
		}
		if err := infoAction(); err != nil {
			log.Error(err)
		}
		return nil
	},
}

var (
	chairperson bool
	proposals   bool
	proposalIdx int
	voterAddr   string
	voters      bool
	bribeAddr   string
	pendingAddr string
	winner      bool
	standings   bool
	balance     string
	height      bool
	operation   int
	nodeversion bool
)

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&chairperson, "chairperson", false, "chairperson and escrow address")
	infoCmd.Flags().BoolVar(&proposals, "proposals", false, "all proposals")
	infoCmd.Flags().IntVar(&proposalIdx, "proposal", -1, "proposal by index")
	infoCmd.Flags().StringVar(&voterAddr, "voter", "", "voter record of an address")
	infoCmd.Flags().BoolVar(&voters, "voters", false, "all voter records")
	infoCmd.Flags().StringVar(&bribeAddr, "bribe", "", "unsettled bribe recorded for an address")
	infoCmd.Flags().StringVar(&pendingAddr, "pending", "", "pending withdrawal of an address")
	infoCmd.Flags().BoolVarP(&winner, "winner", "w", false, "winning proposal index and name")
	infoCmd.Flags().BoolVarP(&standings, "standings", "s", false, "proposals from most to fewest votes")
	infoCmd.Flags().StringVar(&balance, "balance", "", "balance of a address")
	infoCmd.Flags().BoolVarP(&height, "height", "c", false, "number of committed operations")
	infoCmd.Flags().IntVar(&operation, "operation", -1, "receipt of the operation committed at a height")
	infoCmd.Flags().BoolVarP(&nodeversion, "nodeversion", "v", false, "version of connected remote node")
}

type infoQuery struct {
	enabled bool
	method  string
	params  map[string]interface{}
}

func infoAction() error {
	queries := []infoQuery{
		{chairperson, "getchairperson", nil},
		{proposals, "getproposals", nil},
		{proposalIdx >= 0, "getproposal", map[string]interface{}{"index": proposalIdx}},
		{voterAddr != "", "getvoter", map[string]interface{}{"address": voterAddr}},
		{voters, "getvoters", nil},
		{bribeAddr != "", "getbribe", map[string]interface{}{"address": bribeAddr}},
		{pendingAddr != "", "getpendingwithdrawal", map[string]interface{}{"address": pendingAddr}},
		{winner, "getwinningproposal", nil},
		{winner, "getwinnername", nil},
		{standings, "getstandings", nil},
		{balance != "", "getbalance", map[string]interface{}{"address": balance}},
		{height, "getheight", nil},
		{operation >= 0, "getoperation", map[string]interface{}{"height": operation}},
		{nodeversion, "getversion", nil},
	}

	var output [][]byte
	for _, q := range queries {
		if !q.enabled {
			continue
		}
		params := q.params
		if params == nil {
			params = map[string]interface{}{}
		}
		resp, err := client.Call(Address(), q.method, 0, params)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		output = append(output, resp)
	}

	for _, v := range output {
		FormatOutput(v)
	}

	return nil
}
