package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Dumps poll and vote records straight from the badger store, useful to
// audit a poll's history after it closed. Opens read-only so it can run
// next to the bot.
func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	prefix := flag.String("prefix", "poll:", "Prefix to scan (poll: or vote:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Room", "Detail", "State"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(rowFor(key, v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
}

func rowFor(key string, value []byte) []string {
	switch {
	case strings.HasPrefix(key, "poll:"):
		var p struct {
			Room     string `json:"room"`
			Question string `json:"question"`
			State    string `json:"state"`
			Kind     string `json:"kind"`
		}
		if err := json.Unmarshal(value, &p); err != nil {
			return []string{key, "?", "", err.Error(), ""}
		}
		return []string{key, "POLL", p.Room, fmt.Sprintf("%s (%s)", p.Question, p.Kind), p.State}
	case strings.HasPrefix(key, "vote:"):
		var v struct {
			Voter      string `json:"voter"`
			Selections []int  `json:"selections"`
			Token      int64  `json:"token"`
		}
		if err := json.Unmarshal(value, &v); err != nil {
			return []string{key, "?", "", err.Error(), ""}
		}
		return []string{key, "VOTE", "", fmt.Sprintf("%s -> %v @%d", v.Voter, v.Selections, v.Token), ""}
	default:
		return []string{key, "?", "", fmt.Sprintf("%d bytes", len(value)), ""}
	}
}
