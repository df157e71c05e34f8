package handlers

import (
	userRepo "smartfix/database/repository/user"

	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups the endpoint handlers and what the routes need to
// authenticate callers.
type HandlerBundle struct {
	UserRepo  userRepo.UserRepository
	AuthCache *redis.Client
	JWTSecret []byte

	Requests *RequestHandler
	Reviews  *ReviewHandler
	Users    *UserHandler
}
