package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TelegramConfig configures the conversational transport.
type TelegramConfig struct {
	Token       string
	APIBase     string
	Mode        string // "polling" or "webhook"
	PollTimeout time.Duration
}

// GeocoderConfig configures the geocoding gateway. The viewbox pins every
// query to the service's metro area.
type GeocoderConfig struct {
	URL            string
	Viewbox        string
	CountryCodes   string
	Limit          int
	AcceptLanguage string
	UserAgent      string
	Timeout        time.Duration
}

// RouterConfig configures the routing gateway.
type RouterConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// MapLinkConfig configures the directions deep link.
type MapLinkConfig struct {
	BaseURL string
	Engine  string
}

// KafkaConfig configures the observability event stream. An empty broker
// list disables publishing.
type KafkaConfig struct {
	Brokers []string
}

// ServiceConfig holds all configuration for the route bot.
type ServiceConfig struct {
	AppEnv   string
	Port     string
	Telegram TelegramConfig
	Geocoder GeocoderConfig
	Router   RouterConfig
	MapLink  MapLinkConfig
	Kafka    KafkaConfig
}

// Load reads configuration from ROUTEBOT_-prefixed environment variables
// with sensible defaults for everything except the bot token.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUTEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", "development")
	v.SetDefault("port", ":8081")

	v.SetDefault("telegram.api_base", "https://api.telegram.org")
	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.poll_timeout", "50s")

	v.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org/search")
	// HCM City bounding box: left,bottom,right,top (lon,lat,lon,lat).
	v.SetDefault("geocoder.viewbox", "106.3567007,10.1399458,107.0276712,11.1603083")
	v.SetDefault("geocoder.country_codes", "vn")
	v.SetDefault("geocoder.limit", 3)
	v.SetDefault("geocoder.accept_language", "vi")
	v.SetDefault("geocoder.user_agent", "saigon-route-bot/1.0")
	v.SetDefault("geocoder.timeout", "12s")

	v.SetDefault("router.url", "https://router.project-osrm.org/route/v1/driving")
	v.SetDefault("router.user_agent", "saigon-route-bot/1.0")
	v.SetDefault("router.timeout", "12s")

	v.SetDefault("maplink.base_url", "https://www.openstreetmap.org/directions")
	v.SetDefault("maplink.engine", "fossgis_osrm_car")

	v.SetDefault("kafka.brokers", "")

	token := v.GetString("telegram.token")
	if token == "" {
		return nil, fmt.Errorf("ROUTEBOT_TELEGRAM_TOKEN is required")
	}

	var brokers []string
	if raw := strings.TrimSpace(v.GetString("kafka.brokers")); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &ServiceConfig{
		AppEnv: v.GetString("app_env"),
		Port:   v.GetString("port"),
		Telegram: TelegramConfig{
			Token:       token,
			APIBase:     v.GetString("telegram.api_base"),
			Mode:        v.GetString("telegram.mode"),
			PollTimeout: v.GetDuration("telegram.poll_timeout"),
		},
		Geocoder: GeocoderConfig{
			URL:            v.GetString("geocoder.url"),
			Viewbox:        v.GetString("geocoder.viewbox"),
			CountryCodes:   v.GetString("geocoder.country_codes"),
			Limit:          v.GetInt("geocoder.limit"),
			AcceptLanguage: v.GetString("geocoder.accept_language"),
			UserAgent:      v.GetString("geocoder.user_agent"),
			Timeout:        v.GetDuration("geocoder.timeout"),
		},
		Router: RouterConfig{
			URL:       v.GetString("router.url"),
			UserAgent: v.GetString("router.user_agent"),
			Timeout:   v.GetDuration("router.timeout"),
		},
		MapLink: MapLinkConfig{
			BaseURL: v.GetString("maplink.base_url"),
			Engine:  v.GetString("maplink.engine"),
		},
		Kafka: KafkaConfig{Brokers: brokers},
	}, nil
}
