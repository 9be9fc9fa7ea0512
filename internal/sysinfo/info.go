// Package sysinfo builds the report for the INFO admin command (§4.E-ext),
// grounded on the teacher's RedisInfo type but trimmed to the fields that
// still apply once AOF, eviction and authentication are out of scope.
package sysinfo

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is the subset of server-wide counters the report needs; the
// command package owns the real counters and passes a snapshot in here so
// this package stays free of any dependency on command/store internals.
type Stats struct {
	Host                     string
	Port                     int
	StartedAt                time.Time
	ConnectedClients         int
	UsedMemoryBytes          int64
	UsedMemoryPeakBytes      int64
	TotalConnectionsReceived int64
	TotalCommandsExecuted    int64
	TotalKeysExpired         int64
	LastSaveUnix             int64
}

// Report renders the categorized "# Server / # Clients / # Memory /
// # General" text block returned by bare INFO.
func Report(s Stats) string {
	exePath, err := os.Executable()
	if err != nil {
		exePath = ""
	}

	var totalSystemMem uint64
	if vm, err := mem.VirtualMemory(); err == nil {
		totalSystemMem = vm.Total
	}

	var sb []byte
	sb = appendCategory(sb, "Server", [][2]string{
		{"kvstored_version", "1.0.0"},
		{"process_id", strconv.Itoa(os.Getpid())},
		{"tcp_port", strconv.Itoa(s.Port)},
		{"bind", s.Host},
		{"server_time_usec", fmt.Sprint(time.Now().UnixMicro())},
		{"uptime_in_seconds", fmt.Sprintf("%d", int64(time.Since(s.StartedAt).Seconds()))},
		{"executable", exePath},
		{"last_save_unix", fmt.Sprint(s.LastSaveUnix)},
	})
	sb = appendCategory(sb, "Clients", [][2]string{
		{"connected_clients", fmt.Sprint(s.ConnectedClients)},
	})
	sb = appendCategory(sb, "Memory", [][2]string{
		{"used_memory", fmt.Sprintf("%d", s.UsedMemoryBytes)},
		{"used_memory_peak", fmt.Sprintf("%d", s.UsedMemoryPeakBytes)},
		{"total_system_memory", fmt.Sprintf("%d", totalSystemMem)},
	})
	sb = appendCategory(sb, "General", [][2]string{
		{"total_connections_received", fmt.Sprint(s.TotalConnectionsReceived)},
		{"total_commands_processed", fmt.Sprint(s.TotalCommandsExecuted)},
		{"expired_keys", fmt.Sprint(s.TotalKeysExpired)},
	})
	return string(sb)
}

func appendCategory(sb []byte, header string, kv [][2]string) []byte {
	sb = append(sb, fmt.Sprintf("# %s\n", header)...)
	for _, pair := range kv {
		sb = append(sb, fmt.Sprintf("%s:%s\n", pair[0], pair[1])...)
	}
	sb = append(sb, '\n')
	return sb
}

// KeyReport renders the per-key "type/len/ttl/mem/accesses" block returned
// by INFO <key>.
func KeyReport(kind string, length int, ttlSeconds int64, memBytes int64, accesses int64) string {
	return fmt.Sprintf(
		"type:%s\nlen:%d\nttl:%d\nmem:%d\naccesses:%d\n",
		kind, length, ttlSeconds, memBytes, accesses,
	)
}
