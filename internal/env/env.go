package env

import (
	"os"
	"strconv"
	"time"
)

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Environment variable keys
const (
	// OAuth Providers
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvGitHubClientID     = "GITHUB_CLIENT_ID"
	EnvGitHubClientSecret = "GITHUB_CLIENT_SECRET"

	// Auth Configuration
	EnvAuthCallbackBaseURL = "AUTH_CALLBACK_BASE_URL"
	EnvFrontendURL         = "FRONTEND_URL"
	EnvSessionDuration     = "SESSION_DURATION"
	EnvSecureCookies       = "SECURE_COOKIES"

	// Push notifications
	EnvFCMServerKey = "FCM_SERVER_KEY"
	EnvFCMEndpoint  = "FCM_ENDPOINT"

	// Background cleanup
	EnvCleanupInterval = "CLEANUP_INTERVAL"
)

/*
MessAPI is the backend service for the MEA hostel mess PWA: meal marking, monthly rosters, point-based billing and push notifications for resident students.
MessAPI Copyright (C) 2025 MEA Mess Committee
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
