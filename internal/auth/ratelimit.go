package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter tracks abuse counters in redis: failed-login IP bans, attempt
// caps on the OTP endpoints and resend cooldowns.
type RateLimiter struct {
	Redis *redis.Client
}

// EmailCooldown is the minimum gap between two code emails to the same target.
const EmailCooldown = 60 * time.Second

type limit struct {
	max int64
	ttl time.Duration
}

var (
	loginLimit    = limit{max: 5, ttl: 10 * time.Minute}
	verifyLimit   = limit{max: 5, ttl: 10 * time.Minute}
	resetLimit    = limit{max: 5, ttl: 15 * time.Minute}
	registerIP    = limit{max: 10, ttl: 30 * time.Minute}
	registerEmail = limit{max: 3, ttl: 30 * time.Minute}

	loginBanTTL = 1 * time.Hour
)

// bump increments a counter key, arming its expiry on first use, and reports
// whether the limit is reached along with the remaining window.
func (r *RateLimiter) bump(ctx context.Context, key string, l limit) (bool, time.Duration, error) {
	attempts, err := r.Redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if attempts == 1 {
		r.Redis.Expire(ctx, key, l.ttl)
	}
	ttl, _ := r.Redis.TTL(ctx, key).Result()
	return attempts >= l.max, ttl, nil
}

func (r *RateLimiter) IsIPBanned(ctx context.Context, ip string) bool {
	exists, _ := r.Redis.Exists(ctx, "login_ban:"+ip).Result()
	return exists == 1
}

func (r *RateLimiter) RegisterLoginFailure(ctx context.Context, ip string) error {
	locked, _, err := r.bump(ctx, "login_attempts:"+ip, loginLimit)
	if err != nil {
		return err
	}
	if locked {
		r.Redis.Set(ctx, "login_ban:"+ip, "1", loginBanTTL)
		r.Redis.Expire(ctx, "login_attempts:"+ip, loginBanTTL)
	}
	return nil
}

func (r *RateLimiter) ResetLogin(ctx context.Context, ip string) {
	r.Redis.Del(ctx, "login_attempts:"+ip)
}

func (r *RateLimiter) RegisterVerifyAttempt(ctx context.Context, key string) (bool, time.Duration, error) {
	return r.bump(ctx, "verify_attempts:"+strings.ToLower(key), verifyLimit)
}

func (r *RateLimiter) ResetVerify(ctx context.Context, key string) {
	r.Redis.Del(ctx, "verify_attempts:"+strings.ToLower(key))
}

// RegisterResetAttempt counts reset requests per target email and per source
// IP; either counter hitting its cap locks the request out.
func (r *RateLimiter) RegisterResetAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error) {
	keys := make([]string, 0, 2)
	if email != "" {
		keys = append(keys, "reset_attempts:"+strings.ToLower(email))
	}
	if ip != "" {
		keys = append(keys, "reset_attempts_ip:"+ip)
	}
	return r.bumpAll(ctx, keys, resetLimit)
}

// RegisterRegisterAttempt caps signups: looser per IP, tighter per email.
func (r *RateLimiter) RegisterRegisterAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error) {
	var ipKeys, emailKeys []string
	if ip != "" {
		ipKeys = append(ipKeys, "register_attempts_ip:"+ip)
	}
	if email != "" {
		emailKeys = append(emailKeys, "register_attempts_email:"+strings.ToLower(email))
	}

	locked, ttl, err := r.bumpAll(ctx, ipKeys, registerIP)
	if err != nil {
		return false, 0, err
	}
	locked2, ttl2, err := r.bumpAll(ctx, emailKeys, registerEmail)
	if err != nil {
		return false, 0, err
	}
	if ttl2 > ttl {
		ttl = ttl2
	}
	return locked || locked2, ttl, nil
}

func (r *RateLimiter) bumpAll(ctx context.Context, keys []string, l limit) (bool, time.Duration, error) {
	locked := false
	var ttlMax time.Duration
	for _, key := range keys {
		hit, ttl, err := r.bump(ctx, key, l)
		if err != nil {
			return false, 0, err
		}
		if hit {
			locked = true
		}
		if ttl > ttlMax {
			ttlMax = ttl
		}
	}
	return locked, ttlMax, nil
}

func (r *RateLimiter) CooldownTTL(ctx context.Context, key string) time.Duration {
	ttl, err := r.Redis.TTL(ctx, key).Result()
	if err != nil {
		return 0
	}
	return ttl
}

func (r *RateLimiter) SetCooldown(ctx context.Context, key string, ttl time.Duration) {
	r.Redis.Set(ctx, key, "1", ttl)
}
