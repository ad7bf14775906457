package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"net"

	"github.com/hsnyder/tagfd/internal/logger"
	"github.com/hsnyder/tagfd/internal/tagcore"
	"github.com/hsnyder/tagfd/internal/wire"
)

func (s *Server) acceptAdmin() {
	defer s.wg.Done()
	for {
		conn, err := s.admin.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("transport: admin accept: %v", err)
			return
		}
		s.wg.Add(1)
		go s.serveAdminConn(conn)
	}
}

// serveAdminConn implements spec.md §4.4: open the single-writer
// channel (or fail ADMIN_BUSY without altering state), process zero or
// more creation requests framed by internal/wire, and unconditionally
// release the channel when the connection ends. An admin session that
// opens and then goes idle holds I6's exclusivity flag and blocks in a
// genuine OS-level read on conn, same as serveTagConn's per-connection
// context scoping: closeConnOnDone ties that read to server shutdown
// so an idle admin connection can't keep Server.Shutdown's wg.Wait
// from ever returning.
func (s *Server) serveAdminConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	session, err := s.core.Admin.Open()
	if err != nil {
		writeStatus(conn, tagcore.EncodeError(err))
		return
	}
	defer session.Close()

	stopCloser := closeConnOnDone(s.ctx, conn)
	defer stopCloser()

	r := bufio.NewReader(conn)
	buf := make([]byte, wire.CreationRecordSize)
	for {
		if _, err := readFull(r, buf); err != nil {
			return
		}

		req, err := wire.UnmarshalCreation(buf)
		if err != nil {
			writeStatus(conn, tagcore.EncodeError(err))
			continue
		}

		info, cerr := session.CreateTag(req)
		if cerr != nil {
			writeStatus(conn, tagcore.EncodeError(cerr))
			continue
		}

		if bindErr := s.bindTagListener(info.Name); bindErr != nil {
			logger.Error("transport: tag %q created but socket bind failed: %v", info.Name, bindErr)
			writeStatus(conn, tagcore.CodeOutOfMemory)
			continue
		}

		writeStatus(conn, tagcore.CodeOK)
		var idBuf [4]byte
		binary.LittleEndian.PutUint32(idBuf[:], uint32(info.ID))
		conn.Write(idBuf[:])
	}
}
