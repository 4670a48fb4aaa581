// Package vraw reads recordings in the Voysys raw capture format.
package vraw

// Layout of a .vraw file. All integers are little-endian.
//
// Recording header: 16 bytes.
//   magic     uint32 // 0xFEEDFEED
//   epochNsec uint32 // Nanoseconds relative to epochSec.
//   epochSec  uint64 // Unix time of the recording start.
//
// Frame record, repeated:
//   magic            uint32 // 0xAAAAFEED
//   id               int32
//   padding          int32
//   width            int32
//   height           int32
//   format           int32
//   captureTimestamp int64  // UnixNano.
//   receiveTimestamp int64  // UnixNano.
//   payloadSize      int64
//
//   payload []byte // payloadSize bytes. For video formats the payload may
//                  // end in a 7-byte placement footer:
//                  //   metadataSize uint16
//                  //   magic        [5]byte // 00 00 00 56 4A
//                  // declaring that the last metadataSize+7 payload bytes
//                  // are placement metadata, not frame data.
//
//   Generic metadata block:
//     magic   uint32 // 0xBACCDEEF
//     size    uint32
//     body    []byte // size bytes, opaque.
//     trailer [8]byte
//
// Trailing index:
//   entries []indexEntry // count entries of 16 bytes each:
//     offset           int64 // Absolute offset of the frame record.
//     receiveTimestamp int64
//   footer: 8 bytes.
//     magic uint32 // 0xDCBAFEED
//     count uint32
