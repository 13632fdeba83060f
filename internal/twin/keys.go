package twin

// Well-known tag names.
const (
	TagDeviceName  = "deviceName"
	TagModelID     = "modelId"
	TagDeviceType  = "deviceType"
	TagSupportLoRa = "supportLoRaFeatures"
	TagLoRaRegion  = "loraRegion"
)

// Well-known desired property names (server-set configuration targets).
const (
	DesiredAppEUI            = "AppEUI"
	DesiredAppKey            = "AppKey"
	DesiredAppSKey           = "AppSKey"
	DesiredNwkSKey           = "NwkSKey"
	DesiredDevAddr           = "DevAddr"
	DesiredClassType         = "ClassType"
	DesiredDeduplication     = "Deduplication"
	DesiredPreferredWindow   = "PreferredWindow"
	DesiredRX1DROffset       = "RX1DROffset"
	DesiredRX2DataRate       = "RX2DataRate"
	DesiredRXDelay           = "RXDelay"
	DesiredABPRelaxMode      = "ABPRelaxMode"
	DesiredFCntUpStart       = "FCntUpStart"
	DesiredFCntDownStart     = "FCntDownStart"
	DesiredFCntResetCounter  = "FCntResetCounter"
	DesiredSupports32BitFCnt = "Supports32BitFCnt"
	DesiredKeepAliveTimeout  = "KeepAliveTimeout"
	DesiredDownlink          = "Downlink"
	DesiredThumbprint        = "clientThumbprint"
)

// Well-known reported property names (device-reported last-known state).
const (
	ReportedDevAddr     = "DevAddr"
	ReportedDataRate    = "DataRate"
	ReportedTXPower     = "TxPower"
	ReportedNbRep       = "NbRep"
	ReportedRX2DataRate = "RX2DataRate"
	ReportedRX1DROffset = "RX1DROffset"
	ReportedRXDelay     = "RXDelay"

	// Edge runtime reported keys (Modules snapshot).
	ReportedModules          = "modules"
	ReportedConnectedClients = "connectedClients"
)
