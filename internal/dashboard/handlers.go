package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pkt.systems/unitsctl/internal/bindings"
	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/nestjson"
)

const metadataFieldPrefix = "meta."

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) listDrivers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.DriverDetails(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, resp)
}

// upload is the multipart form shared by driver loads and program submits.
type upload struct {
	name, version string
	binary        []byte
}

func (s *Server) readUpload(r *http.Request) (upload, error) {
	var u upload
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return u, badRequest{msg: "expected multipart form: " + err.Error()}
	}
	u.name = strings.TrimSpace(r.FormValue("name"))
	u.version = strings.TrimSpace(r.FormValue("version"))
	data, filename, err := formFile(r, "binary")
	if err != nil {
		return u, err
	}
	if rpc.DetectBinaryType(filename, data) == rpc.BinaryUnknown {
		return u, errUnsupportedBinary
	}
	u.binary = data
	return u, nil
}

func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", badRequest{msg: fmt.Sprintf("missing %s file", field)}
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Filename, nil
}

func (s *Server) loadDriver(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.backend.LoadDriver(r.Context(), u.name, u.version, u.binary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, resp)
}

func (s *Server) unloadDriver(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := s.backend.UnloadDriver(r.Context(), vars["name"], vars["version"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, resp)
}

type bindingsView struct {
	UnitID string               `json:"unitId"`
	Groups []bindings.UserGroup `json:"groups"`
}

type usersView struct {
	Users []string `json:"users"`
}

// listBindings groups the resolver for ?user=, or lists the known users
// when no user is given.
func (s *Server) listBindings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.ListResolver(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		users := bindings.Users(resp.PathMappings)
		if users == nil {
			users = []string{}
		}
		s.writeResult(w, http.StatusOK, usersView{Users: users})
		return
	}
	s.writeResult(w, http.StatusOK, bindingsView{
		UnitID: bindings.UnitID(user, s.domain),
		Groups: bindings.Group(user, resp.PathMappings),
	})
}

type bindBody struct {
	DriverName    string          `json:"driverName"`
	DriverVersion string          `json:"driverVersion"`
	Path          string          `json:"path"`
	AccountInfo   json.RawMessage `json:"accountInfo"`
}

// accountInfoText accepts the account info either as a JSON string or as
// any other JSON value, which is stored in compact form.
func accountInfoText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	v, err := nestjson.Decode(raw)
	if err != nil {
		return "", err
	}
	out, err := v.MarshalJSON()
	return string(out), err
}

func (s *Server) bind(w http.ResponseWriter, r *http.Request) {
	var body bindBody
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxUpload)).Decode(&body); err != nil {
		s.writeError(w, badRequest{msg: "invalid JSON body: " + err.Error()})
		return
	}
	info, err := accountInfoText(body.AccountInfo)
	if err != nil {
		s.writeError(w, badRequest{msg: "invalid accountInfo: " + err.Error()})
		return
	}
	resp, err := s.backend.Bind(r.Context(), rpc.BindRequest{
		DriverName:    body.DriverName,
		DriverVersion: body.DriverVersion,
		Path:          body.Path,
		AccountInfo:   info,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, resp)
}

func (s *Server) unbind(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.Unbind(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, resp)
}

func (s *Server) listPrograms(w http.ResponseWriter, r *http.Request) {
	resp, err := s.backend.ListPrograms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, resp)
}

func (s *Server) submitProgram(w http.ResponseWriter, r *http.Request) {
	u, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.backend.Submit(r.Context(), u.name, u.version, u.binary)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusCreated, resp)
}

type executeBody struct {
	Input     string            `json:"input"`
	ProgramID string            `json:"programId"`
	Binary    []byte            `json:"binary"`
	Metadata  map[string]string `json:"metadata"`
}

// readExecute accepts JSON, with the binary base64 encoded, or a multipart
// form whose meta.* fields become call metadata.
func (s *Server) readExecute(r *http.Request) (executeBody, error) {
	var body executeBody
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(io.LimitReader(r.Body, s.maxUpload)).Decode(&body); err != nil {
			return body, badRequest{msg: "invalid JSON body: " + err.Error()}
		}
		return body, nil
	}
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return body, badRequest{msg: "invalid multipart form: " + err.Error()}
	}
	body.Input = r.FormValue("input")
	body.ProgramID = strings.TrimSpace(r.FormValue("programId"))
	if len(r.MultipartForm.File["binary"]) > 0 {
		data, filename, err := formFile(r, "binary")
		if err != nil {
			return body, err
		}
		if rpc.DetectBinaryType(filename, data) == rpc.BinaryUnknown {
			return body, errUnsupportedBinary
		}
		body.Binary = data
	}
	for key, values := range r.MultipartForm.Value {
		if name, ok := strings.CutPrefix(key, metadataFieldPrefix); ok && name != "" && len(values) > 0 {
			if body.Metadata == nil {
				body.Metadata = map[string]string{}
			}
			body.Metadata[name] = values[0]
		}
	}
	return body, nil
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	body, err := s.readExecute(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.backend.Execute(r.Context(), rpc.ExecutionRequest{
		Input:     body.Input,
		Binary:    body.Binary,
		ProgramID: body.ProgramID,
	}, body.Metadata)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResult(w, http.StatusOK, resp)
}

// prettify renders the request body as text, the same way the dashboard
// renders backend payloads.
func (s *Server) prettify(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.maxUpload))
	if err != nil {
		s.writeError(w, badRequest{msg: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, nestjson.Prettify(string(data))+"\n")
}
