package status

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Beta 1.8 - 1.3.2 Server List Ping
// https://wiki.vg/Server_List_Ping#Beta_1.8_to_1.3
const (
	legacyPingRequest = 0xFE
	legacyKickPacket  = 0xFF
	legacyDelimiter   = "§§"
	legacyFieldCount  = 3
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// rawReply holds the decoded fields of a legacy ping reply.
type rawReply struct {
	motd   string
	online int32
	max    int32
}

// readLegacyReply sends the ping request on conn and decodes the kick packet the server answers with.
func readLegacyReply(conn Conn) (rawReply, error) {
	if err := conn.WriteFrame([]byte{legacyPingRequest}, false); err != nil {
		return rawReply{}, err
	}

	packetID, err := conn.ReadByte()
	if err != nil {
		return rawReply{}, err
	}
	if packetID != legacyKickPacket {
		return rawReply{}, fmt.Errorf("%w: unexpected packet type 0x%02X, expected 0x%02X",
			ErrProtocol, packetID, legacyKickPacket)
	}

	// length is counted in UTF-16 code units
	length, err := conn.ReadShort()
	if err != nil {
		return rawReply{}, err
	}

	payload, err := conn.ReadBytes(int(length) * 2)
	if err != nil {
		return rawReply{}, err
	}

	text, err := utf16be.NewDecoder().Bytes(payload)
	if err != nil {
		return rawReply{}, fmt.Errorf("%w: decode UTF-16BE payload: %w", ErrProtocol, err)
	}

	return parseLegacyPayload(string(text))
}

// parseLegacyPayload splits "motd§§online§§max" into its fields.
func parseLegacyPayload(text string) (rawReply, error) {
	fields := strings.Split(text, legacyDelimiter)
	if len(fields) != legacyFieldCount {
		return rawReply{}, fmt.Errorf("%w: expected %d fields in reply, got %d",
			ErrProtocol, legacyFieldCount, len(fields))
	}

	online, err := parseCount(fields[1])
	if err != nil {
		return rawReply{}, fmt.Errorf("%w: invalid player count %q", ErrProtocol, fields[1])
	}

	maxPlayers, err := parseCount(fields[2])
	if err != nil {
		return rawReply{}, fmt.Errorf("%w: invalid max player count %q", ErrProtocol, fields[2])
	}

	return rawReply{motd: fields[0], online: online, max: maxPlayers}, nil
}

func parseCount(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}

	return int32(n), nil
}
