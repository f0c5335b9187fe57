package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the User-Agent parser with bot and device type detection
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	Raw        string // Original User-Agent string
}

// Device types
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// Crawlers and link preview fetchers. Preview fetchers count as bots because
// they request a page when a link is shared, not when someone clicks it.
// Generic crawlers are caught by uap's "Spider" device family.
var botIndicators = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider", "yandexbot",
	"applebot", "petalbot", "ahrefsbot", "semrushbot", "mj12bot", "gptbot",
	"facebookexternalhit", "twitterbot", "linkedinbot", "pinterestbot", "redditbot",
	"whatsapp", "telegrambot", "skypeuripreview", "slackbot", "discordbot", "embedly",
	"headlesschrome", "crawler", "spider",
}

// NewParser creates a parser from a regexes file. An empty path, or a path
// that does not exist, falls back to the definitions bundled with uap-go.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath == "" {
		log.Info("User-Agent parser using bundled regexes")
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}

	regexBytes, err := os.ReadFile(regexFilePath)
	if os.IsNotExist(err) {
		log.Warn("regexes file not found, using bundled regexes", zap.String("regexes_file", regexFilePath))
		return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file: %w", err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized successfully", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// ParseUserAgent classifies a User-Agent. Crawlers and preview fetchers get
// DeviceBot; an empty User-Agent is DeviceUnknown, never a bot.
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{
			DeviceType: DeviceUnknown,
			Browser:    DeviceUnknown,
			OS:         DeviceUnknown,
		}
	}

	client := p.parser.Parse(userAgent)

	deviceInfo := &DeviceInfo{
		Browser:    formatFamily(client.UserAgent.Family),
		OS:         formatFamily(client.Os.Family),
		Raw:        userAgent,
		DeviceType: p.determineDeviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("device_type", deviceInfo.DeviceType),
		zap.String("browser", deviceInfo.Browser),
		zap.String("os", deviceInfo.OS),
	)

	return deviceInfo
}

// determineDeviceType determines the device type based on parsed client info and raw User-Agent
func (p *Parser) determineDeviceType(client *uaparser.Client, userAgent string) string {
	if p.isBot(client, userAgent) {
		return DeviceBot
	}

	deviceFamily := client.Device.Family
	if deviceFamily != "" && deviceFamily != "Other" {
		if containsAny(deviceFamily, "iPad", "Tablet", "Kindle", "Surface") {
			return DeviceTablet
		}
		if containsAny(deviceFamily, "iPhone", "Android", "BlackBerry", "Windows Phone", "Mobile", "Phone") {
			return DeviceMobile
		}
	}

	osFamily := client.Os.Family
	switch {
	case containsAny(osFamily, "iOS"):
		if containsAny(userAgent, "iPad") {
			return DeviceTablet
		}
		return DeviceMobile
	case containsAny(osFamily, "Android"):
		// Android tablets typically don't have "Mobile" in User-Agent
		if !containsAny(userAgent, "Mobile") {
			return DeviceTablet
		}
		return DeviceMobile
	case containsAny(osFamily, "Windows Phone", "BlackBerry OS", "Firefox OS", "Sailfish OS"):
		return DeviceMobile
	case containsAny(osFamily, "Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD", "OpenBSD", "NetBSD"):
		return DeviceDesktop
	}

	return DeviceUnknown
}

// isBot checks the parsed device family first, then known crawler names
func (p *Parser) isBot(client *uaparser.Client, userAgent string) bool {
	return client.Device.Family == "Spider" || knownCrawler(client.UserAgent.Family, userAgent)
}

func knownCrawler(family, userAgent string) bool {
	family = strings.ToLower(family)
	ua := strings.ToLower(userAgent)
	for _, indicator := range botIndicators {
		if strings.Contains(family, indicator) || strings.Contains(ua, indicator) {
			return true
		}
	}
	return false
}

// containsAny performs a case-insensitive search for any of the substrings
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// formatFamily replaces empty or "Other" with "unknown"
func formatFamily(s string) string {
	if s == "" || s == "Other" {
		return DeviceUnknown
	}
	return s
}
