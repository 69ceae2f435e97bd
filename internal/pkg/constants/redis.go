package constants

// Redis key formats
const (
	KeyLastLocationEvent = "tracking:last:%s:%s" // Format: tracking:last:{rider_user_id}:{device_id}
	KeyBindingLock       = "tracking:lock:%s:%s" // Format: tracking:lock:{rider_user_id}:{device_id}
)
