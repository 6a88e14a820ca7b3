package apdu

// Instruction tags.
const (
	InsAppInfo                     uint8 = 0x00
	InsWalletKeys                  uint8 = 0x10
	InsSubaddressKeys              uint8 = 0x11
	InsKeyImage                    uint8 = 0x12
	InsRandom                      uint8 = 0x14
	InsIdentSign                   uint8 = 0x20
	InsTxInit                      uint8 = 0x30
	InsTxSetMessage                uint8 = 0x31
	InsTxSummaryInit               uint8 = 0x32
	InsTxSummaryAddTxOut           uint8 = 0x33
	InsTxSummaryAddTxOutUnblinding uint8 = 0x34
	InsTxSummaryAddTxIn            uint8 = 0x35
	InsTxSummaryBuild              uint8 = 0x36
	InsTxRingInit                  uint8 = 0x40
	InsTxSetBlinding               uint8 = 0x41
	InsTxAddTxOut                  uint8 = 0x42
	InsTxRingSign                  uint8 = 0x43
	InsTxGetKeyImage               uint8 = 0x44
	InsTxGetResponse               uint8 = 0x45
	InsTxMemoSign                  uint8 = 0x50
	InsTxComplete                  uint8 = 0x70
	InsReset                       uint8 = 0x7f
)

// Status words.
const (
	StatusOk                 uint16 = 0x9000
	StatusInvalidParameter   uint16 = 0x6a80
	StatusInvalidState       uint16 = 0x6a81
	StatusUnauthorized       uint16 = 0x6982
	StatusUserRejected       uint16 = 0x6985
	StatusWrongLength        uint16 = 0x6b00
	StatusUnknownInstruction uint16 = 0x6d00
)

// MaxBodyLen bounds a single request or response body.
const MaxBodyLen = 255
