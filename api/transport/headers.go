package transport

// Header names of the relay's browser-facing contract.
const (
	HeaderClientSessionID = "X-Client-Session-Id"
	HeaderOdooCookies     = "X-Odoo-Cookies"
	HeaderOdooURL         = "X-Odoo-Url"
)
