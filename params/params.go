package params

const (
	MagicTriggerPhrase = "Take it away, Link Bot!" // posted by the magic user to trigger the public announcement

	// PrefillFormLinkTemplate is the external consent form with three prefilled
	// entries: username (percent-encoded), userid and auth token digest.
	PrefillFormLinkTemplate = "https://docs.google.com/forms/d/e/1FAIpQLSc6_HtfblPc_hikKztWNh6SfEhKAEzFxTgUQqbFDXQ7qFq08A/viewform?usp=pp_url&entry.1426369734={username}&entry.1675772246={userid}&entry.1231032926={auth_token}"

	MainLogFile = "main.log" // general events and the connection banner
	AuthLogFile = "auth.log" // one line per issued token
	ErrLogFile  = "err.log"  // reserved, nothing routes here yet

	DefaultLogsDir         = "logs"
	DefaultHealthCheckAddr = ":3001" // health check server address

	NonceSize = 16 // random bytes per nonce, hex-encoded in the auth record
)

// AnnouncementMessage is the in-place reply to the magic trigger. The single
// format verb is the magic user's id.
const AnnouncementMessage = "Thanks <@%d>, and hi @everyone! React to this message, and I'll DM you an authenticated link to fill out the consent form."

// AuthenticatedLinkMessage is the DM sent along with every issued token.
// Format verbs: userid, userid, timestamp, nonce, digest, hash input, form URL.
const AuthenticatedLinkMessage = `Authenticated as <@%d>.
security stuff, if you're curious: ||userid=%d, epoch timestamp=%s, nonce=%s, generated auth token=%s
auth token = SHA256(%q)||
Your authenticated URL: %s
To get a new URL, either send me a message, or react on any of my messages!`
