package fake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/legacyping/internal/models"
	"github.com/woozymasta/legacyping/internal/storage"
)

// GenerateData populates the storage with count randomized servers, roughly a
// fifth of them offline, with varied MOTDs, player counts and countries.
func GenerateData(store *storage.Repository, count int) {
	names := []string{"Survival", "Creative", "SkyBlock", "Factions", "Hardcore", "Lobby"}
	colors := []string{"§a", "§b", "§c", "§e", "§6", "§9", ""}
	domains := []string{"example.org", "example.net", "example.com"}
	countries := []string{"US", "DE", "RU", "BR", "FR", "GB", "PL", "NL", "CA", "AU", "SE", "FI"}
	maxSlots := []int32{8, 20, 32, 64, 100, 500}

	for i := 0; i < count; i++ {
		seen := time.Now().UTC().
			Add(-time.Duration(rand.Intn(30)) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(1440)) * time.Minute)

		name := names[rand.Intn(len(names))]
		motd := fmt.Sprintf("%s%s §7#%d", colors[rand.Intn(len(colors))], name, rand.Intn(1000))
		slots := maxSlots[rand.Intn(len(maxSlots))]
		ip := fmt.Sprintf("%d.%d.%d.%d", rand.Intn(220)+1, rand.Intn(255), rand.Intn(255), rand.Intn(255))

		node := models.Server{
			Host:        fmt.Sprintf("mc%d.%s", i, domains[rand.Intn(len(domains))]),
			Port:        25565 + rand.Intn(10),
			Address:     ip + ":25565",
			CountryCode: countries[rand.Intn(len(countries))],
			MOTD:        motd,
			Players:     rand.Int31n(slots + 1),
			MaxPlayers:  slots,
			LatencyMS:   int64(10 + rand.Intn(250)),
			Online:      true,
			FirstSeen:   seen.Add(-7 * 24 * time.Hour),
			LastSeen:    seen,
		}
		node.MOTDClean = stripCodes(node.MOTD)

		if rand.Float32() < 0.2 {
			node.Online = false
			node.LastError = "connection failed: connection refused"
		}

		if err := store.UpsertServer(node); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake server")
		}
	}
}

func stripCodes(s string) string {
	out := make([]rune, 0, len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '§' && i+1 < len(runes) {
			i++
			continue
		}
		out = append(out, runes[i])
	}

	return string(out)
}
