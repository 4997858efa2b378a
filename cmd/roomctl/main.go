// roomctl inspects a running room server: who is online and the counters
// since startup.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"chat-room/observability"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	users, err := fetchPresence(client, *addr)
	if err != nil {
		log.Fatal("Error while fetching presence: ", err)
	}
	stats, err := fetchStats(client, *addr)
	if err != nil {
		log.Fatal("Error while fetching stats: ", err)
	}

	color.Bold.Printf("Room at %s\n\n", *addr)

	color.Cyan.Println("Online users")
	if len(users) == 0 {
		color.Gray.Println("(empty room)")
	}
	for i, u := range users {
		fmt.Printf("%3d. %s\n", i+1, u)
	}
	fmt.Println()

	color.Cyan.Println("Counters")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	table.Append([]string{"room_size", fmt.Sprintf("%d", stats.RoomSize)})
	table.Append([]string{"joins", fmt.Sprintf("%d", stats.Joins)})
	table.Append([]string{"leaves", fmt.Sprintf("%d", stats.Leaves)})
	table.Append([]string{"messages_posted", fmt.Sprintf("%d", stats.MessagesPosted)})
	table.Append([]string{"messages_censored", fmt.Sprintf("%d", stats.MessagesCensored)})
	table.Append([]string{"commands_dropped", fmt.Sprintf("%d", stats.CommandsDropped)})
	table.Append([]string{"delivery_failures", fmt.Sprintf("%d", stats.DeliveryFailures)})
	table.Append([]string{"started_at", stats.StartedAt})
	table.Render()
}

func fetchPresence(client *http.Client, base string) ([]string, error) {
	var payload struct {
		Users []string `json:"users"`
	}
	if err := getJSON(client, base+"/presence", &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

func fetchStats(client *http.Client, base string) (observability.RoomStats, error) {
	var stats observability.RoomStats
	err := getJSON(client, base+"/stats", &stats)
	return stats, err
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
