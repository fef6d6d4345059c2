package supplicant

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
)

// SignalPercent maps an RSSI in dBm to 0-100: -100 dBm and below is 0,
// -50 dBm and above is 100, linear in between.
func SignalPercent(dbm int) uint8 {
	switch {
	case dbm <= -100:
		return 0
	case dbm >= -50:
		return 100
	default:
		return uint8(2 * (dbm + 100))
	}
}

// SecurityFromFlags picks the strongest key management named in a
// scan_results flags column such as "[WPA2-PSK-CCMP][ESS]".
func SecurityFromFlags(flags string) domain.SupplicantSecurity {
	switch {
	case strings.Contains(flags, "SAE"):
		return domain.SecurityWPA3SAE
	case strings.Contains(flags, "EAP"):
		return domain.SecurityEAP
	case strings.Contains(flags, "WPA2-PSK") || strings.Contains(flags, "RSN-PSK"):
		return domain.SecurityWPA2PSK
	case strings.Contains(flags, "WPA-PSK"):
		return domain.SecurityWPAPSK
	case strings.Contains(flags, "WEP"):
		return domain.SecurityWEP
	default:
		return domain.SecurityOpen
	}
}

// parseScanResults parses "wpa_cli scan_results":
//
//	bssid / frequency / signal level / flags / ssid
//	aa:bb:cc:dd:ee:ff	2437	-48	[WPA2-PSK-CCMP][ESS]	home
func parseScanResults(out string) ([]domain.ScanResult, error) {
	var results []domain.ScanResult
	for _, fields := range tableRows(out, "bssid") {
		if len(fields) < 4 {
			return nil, errors.NewParseError("malformed scan result line: "+strings.Join(fields, "\t"), nil)
		}
		freq, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, errors.NewParseError("invalid frequency '"+fields[1]+"'", err)
		}
		level, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.NewParseError("invalid signal level '"+fields[2]+"'", err)
		}
		ssid := ""
		if len(fields) > 4 {
			ssid = fields[4]
		}
		results = append(results, domain.ScanResult{
			SSID:          ssid,
			BSSID:         fields[0],
			Frequency:     uint32(freq),
			SignalPercent: SignalPercent(level),
			Security:      SecurityFromFlags(fields[3]),
		})
	}
	return results, nil
}

// parseListNetworks parses "wpa_cli list_networks":
//
//	network id / ssid / bssid / flags
//	0	home	any	[CURRENT]
func parseListNetworks(out string) ([]domain.ConfiguredNetwork, error) {
	var networks []domain.ConfiguredNetwork
	for _, fields := range tableRows(out, "network id") {
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.NewParseError("invalid network id '"+fields[0]+"'", err)
		}
		n := domain.ConfiguredNetwork{ID: id}
		if len(fields) > 1 {
			n.SSID = fields[1]
		}
		if len(fields) > 2 && fields[2] != "any" {
			n.BSSID = fields[2]
		}
		if len(fields) > 3 {
			n.Flags = fields[3]
		}
		networks = append(networks, n)
	}
	return networks, nil
}

// parseKeyValues parses the key=value output of "status" and "signal_poll".
func parseKeyValues(out string) map[string]string {
	values := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if ok {
			values[key] = value
		}
	}
	return values
}

// tableRows splits tab separated output, skipping the header line and
// wpa_cli's "Selected interface" banner.
func tableRows(out, header string) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" ||
			strings.HasPrefix(line, header) ||
			strings.HasPrefix(line, "Selected interface") {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}
