package captcha

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Options 验证码图像参数与按 IP 限流设置，来自 CAPTCHA_* 环境变量。
type Options struct {
	Enabled  bool          `env:"CAPTCHA_ENABLED" env-default:"false"`
	Prefix   string        `env:"CAPTCHA_PREFIX" env-default:"captcha"`
	TTL      time.Duration `env:"CAPTCHA_TTL" env-default:"5m"`
	Width    int           `env:"CAPTCHA_WIDTH" env-default:"240"`
	Height   int           `env:"CAPTCHA_HEIGHT" env-default:"80"`
	Length   int           `env:"CAPTCHA_LENGTH" env-default:"5"`
	MaxSkew  float64       `env:"CAPTCHA_MAX_SKEW" env-default:"0.7"`
	DotCount int           `env:"CAPTCHA_DOT_COUNT" env-default:"80"`
	// RateLimit 单个 IP 在 RateWindow 内可获取的验证码数量，0 表示不限。
	RateLimit  int           `env:"CAPTCHA_RATE_LIMIT" env-default:"10"`
	RateWindow time.Duration `env:"CAPTCHA_RATE_WINDOW" env-default:"1m"`
}

// LoadOptions 读取验证码配置；Enabled=false 时其余字段无意义。
func LoadOptions() (Options, error) {
	var opts Options
	if err := cleanenv.ReadEnv(&opts); err != nil {
		return Options{}, fmt.Errorf("read captcha config: %w", err)
	}
	return opts, nil
}
