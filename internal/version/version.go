package version

// Current is the release version of the client, without a "v" prefix.
const Current = "0.3.1"

// UserAgent is sent on every outbound request to the humanizer service.
func UserAgent() string {
	return "text-humanizer/" + Current
}
