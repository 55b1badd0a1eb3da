// Copyright 2026 The Frontpanel Authors
// SPDX-License-Identifier: Apache-2.0

package usbfs

// USB descriptor types (USB 2.0 spec table 9-5), limited to the ones
// the endpoint scan cares about.
const (
	descTypeDevice        = 0x01
	descTypeConfiguration = 0x02
	descTypeInterface     = 0x04
	descTypeEndpoint      = 0x05
)

const (
	deviceDescriptorLength = 18

	// bmAttributes bits 1:0 select the transfer type.
	transferTypeMask = 0x03
	transferTypeBulk = 0x02

	// bEndpointAddress bit 7 is the direction: set means IN.
	endpointDirIn = 0x80
)

// bulkOutEndpoint scans a stream of concatenated USB descriptors for
// the first bulk OUT endpoint belonging to the given interface number
// and returns its address. Reading a usbdevfs device node yields such
// a stream: the device descriptor followed by the active
// configuration with its interface and endpoint descriptors inline.
//
// Malformed input (zero-length or truncated descriptors) terminates
// the scan rather than failing it; whatever was found up to that
// point stands.
func bulkOutEndpoint(desc []byte, iface uint8) (uint8, bool) {
	// Interface number of the descriptor block being walked. Endpoint
	// descriptors seen before any interface descriptor belong to the
	// default control pipe and are skipped.
	current := -1

	for i := 0; i < len(desc); {
		length := int(desc[i])
		if length < 2 || i+length > len(desc) {
			break
		}

		switch desc[i+1] {
		case descTypeInterface:
			// bInterfaceNumber is byte 2.
			if length < 4 {
				break
			}
			current = int(desc[i+2])

		case descTypeEndpoint:
			// bEndpointAddress is byte 2, bmAttributes byte 3.
			if length < 5 || current != int(iface) {
				break
			}
			addr := desc[i+2]
			attrs := desc[i+3]
			if attrs&transferTypeMask == transferTypeBulk && addr&endpointDirIn == 0 {
				return addr, true
			}
		}

		i += length
	}
	return 0, false
}
