// enrdump decodes Ethereum node records from the command line. Records are
// read from arguments or stdin, one per line, and printed as JSON summaries.
// All I/O lives here; the decoding packages are pure.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/migalabs/eth-research/encoding/rlp"
	"github.com/migalabs/eth-research/network/enr"
	"github.com/migalabs/eth-research/network/forkdigest"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	strictLengthsFlag = &cli.BoolFlag{
		Name:  "strict-lengths",
		Usage: "Reject RLP length prefixes that are not minimally encoded.",
	}
	maxDepthFlag = &cli.IntFlag{
		Name:  "max-depth",
		Usage: "Maximum RLP nesting depth accepted before a payload is rejected.",
		Value: rlp.DefaultMaxDepth,
	}
	subnetsFlag = &cli.BoolFlag{
		Name:  "subnets",
		Usage: "Include the attestation and sync committee subnet indices the node subscribes to.",
	}
	forkVersionFlag = &cli.StringFlag{
		Name:  "fork-version",
		Usage: "Fork version as 0x-prefixed hex (4 bytes). When unset, the mainnet schedule is printed.",
	}
	genesisRootFlag = &cli.StringFlag{
		Name:  "genesis-validators-root",
		Usage: "Genesis validators root as 0x-prefixed hex (32 bytes).",
		Value: "0x4b363db94e286120d76eb905340fdd4e54bfe9f06bf33ff6cf5ad27f511bfe95",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "enrdump",
		Usage: "Decode Ethereum node records and related discovery data.",
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "Decode ENR strings from arguments or stdin and print JSON summaries.",
				ArgsUsage: "[enr:... ...]",
				Flags:     []cli.Flag{strictLengthsFlag, maxDepthFlag, subnetsFlag},
				Action:    decodeAction,
			},
			{
				Name:   "fork-digest",
				Usage:  "Compute consensus fork digests.",
				Flags:  []cli.Flag{forkVersionFlag, genesisRootFlag},
				Action: forkDigestAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

// output is the per-record JSON document: the semantic summary plus the
// optional subnet indices.
type output struct {
	*enr.Summary
	AttestationSubnets []uint64 `json:"attestation_subnets,omitempty"`
	SyncSubnets        []uint64 `json:"sync_subnets,omitempty"`
}

func decodeAction(cliCtx *cli.Context) error {
	opts := []rlp.Option{rlp.WithMaxDepth(cliCtx.Int(maxDepthFlag.Name))}
	if cliCtx.Bool(strictLengthsFlag.Name) {
		opts = append(opts, rlp.WithStrictLengths())
	}

	records := cliCtx.Args().Slice()
	if len(records) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				records = append(records, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrap(err, "read stdin")
		}
	}
	if len(records) == 0 {
		return errors.New("no records provided")
	}

	failed := 0
	enc := json.NewEncoder(cliCtx.App.Writer)
	enc.SetIndent("", "  ")
	for _, record := range records {
		r, err := enr.Parse(record, opts...)
		if err != nil {
			log.WithError(err).WithField("record", truncate(record)).Error("Could not decode record")
			failed++
			continue
		}
		out := output{Summary: enr.Summarize(r)}
		if cliCtx.Bool(subnetsFlag.Name) {
			out.AttestationSubnets = sortedIndices(subnetsOrNone(enr.AttestationSubnets, r))
			out.SyncSubnets = sortedIndices(subnetsOrNone(enr.SyncSubnets, r))
		}
		if err := enc.Encode(out); err != nil {
			return errors.Wrap(err, "encode summary")
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d records could not be decoded", failed, len(records)), 1)
	}
	return nil
}

// subnetsOrNone treats a missing or malformed subnet entry as an empty set:
// the summary already reports the raw value, so the CLI does not fail on it.
func subnetsOrNone(read func(*enr.Record) (map[uint64]bool, error), r *enr.Record) map[uint64]bool {
	indices, err := read(r)
	if err != nil {
		log.WithError(err).Debug("No subnet indices for record")
		return nil
	}
	return indices
}

func sortedIndices(set map[uint64]bool) []uint64 {
	if len(set) == 0 {
		return nil
	}
	indices := make([]uint64, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	return indices
}

func forkDigestAction(cliCtx *cli.Context) error {
	root := cliCtx.String(genesisRootFlag.Name)

	if version := cliCtx.String(forkVersionFlag.Name); version != "" {
		digest, err := forkdigest.ComputeHex(version, root)
		if err != nil {
			return err
		}
		fmt.Fprintf(cliCtx.App.Writer, "%s %s\n", version, digest)
		return nil
	}

	for _, entry := range forkdigest.MainnetSchedule {
		digest, err := forkdigest.ComputeHex(fmt.Sprintf("%#x", entry.Version[:]), root)
		if err != nil {
			return err
		}
		fmt.Fprintf(cliCtx.App.Writer, "%-10s %s\n", entry.Name, digest)
	}
	return nil
}

func truncate(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
