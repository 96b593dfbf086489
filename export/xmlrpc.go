package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Minimal XML-RPC client covering what the WordPress endpoints need:
// string/int/bool/base64 scalars, structs, and arrays. Requests are built by
// hand the same way the draft payloads are; responses are decoded with
// encoding/xml.

func xmlrpcCall(ctx context.Context, client *http.Client, endpoint, method string, args ...interface{}) (rpcValue, error) {
	var body bytes.Buffer
	body.WriteString(xml.Header)
	body.WriteString("<methodCall><methodName>")
	if err := xmlEscape(&body, method); err != nil {
		return rpcValue{}, err
	}
	body.WriteString("</methodName><params>")
	for _, arg := range args {
		body.WriteString("<param>")
		if err := writeValue(&body, arg); err != nil {
			return rpcValue{}, err
		}
		body.WriteString("</param>")
	}
	body.WriteString("</params></methodCall>")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return rpcValue{}, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := client.Do(req)
	if err != nil {
		return rpcValue{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rpcValue{}, fmt.Errorf("xmlrpc %s: status %d", method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return rpcValue{}, err
	}

	var decoded methodResponse
	if err := xml.Unmarshal(data, &decoded); err != nil {
		return rpcValue{}, fmt.Errorf("xmlrpc %s: decode response: %v", method, err)
	}
	if decoded.Fault != nil {
		return rpcValue{}, fmt.Errorf("xmlrpc %s: fault %s: %s",
			method, decoded.Fault.member("faultCode").text(), decoded.Fault.member("faultString").text())
	}
	if len(decoded.Params) == 0 {
		return rpcValue{}, fmt.Errorf("xmlrpc %s: empty response", method)
	}
	return decoded.Params[0], nil
}

func writeValue(w *bytes.Buffer, v interface{}) error {
	w.WriteString("<value>")
	switch t := v.(type) {
	case string:
		w.WriteString("<string>")
		if err := xmlEscape(w, t); err != nil {
			return err
		}
		w.WriteString("</string>")
	case int:
		fmt.Fprintf(w, "<int>%d</int>", t)
	case bool:
		if t {
			w.WriteString("<boolean>1</boolean>")
		} else {
			w.WriteString("<boolean>0</boolean>")
		}
	case []byte:
		w.WriteString("<base64>")
		w.WriteString(base64.StdEncoding.EncodeToString(t))
		w.WriteString("</base64>")
	case rpcStruct:
		w.WriteString("<struct>")
		for _, m := range t {
			w.WriteString("<member><name>")
			if err := xmlEscape(w, m.name); err != nil {
				return err
			}
			w.WriteString("</name>")
			if err := writeValue(w, m.value); err != nil {
				return err
			}
			w.WriteString("</member>")
		}
		w.WriteString("</struct>")
	case []interface{}:
		w.WriteString("<array><data>")
		for _, e := range t {
			if err := writeValue(w, e); err != nil {
				return err
			}
		}
		w.WriteString("</data></array>")
	default:
		return fmt.Errorf("xmlrpc: unsupported value type %T", v)
	}
	w.WriteString("</value>")
	return nil
}

func xmlEscape(w *bytes.Buffer, s string) error {
	return xml.EscapeText(w, []byte(s))
}

// rpcStruct keeps member order stable, which keeps request bodies
// reproducible in tests.
type rpcStruct []rpcMemberOut

type rpcMemberOut struct {
	name  string
	value interface{}
}

type methodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []rpcValue `xml:"params>param>value"`
	Fault   *rpcValue  `xml:"fault>value"`
}

type rpcValue struct {
	Str     *string     `xml:"string"`
	Int     *string     `xml:"int"`
	I4      *string     `xml:"i4"`
	Boolean *string     `xml:"boolean"`
	Raw     string      `xml:",chardata"`
	Struct  []rpcMember `xml:"struct>member"`
	Array   []rpcValue  `xml:"array>data>value"`
}

type rpcMember struct {
	Name  string   `xml:"name"`
	Value rpcValue `xml:"value"`
}

// text returns the scalar content of a value. An untyped <value> is a string
// per the XML-RPC spec.
func (v rpcValue) text() string {
	switch {
	case v.Str != nil:
		return strings.TrimSpace(*v.Str)
	case v.Int != nil:
		return strings.TrimSpace(*v.Int)
	case v.I4 != nil:
		return strings.TrimSpace(*v.I4)
	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean)
	default:
		return strings.TrimSpace(v.Raw)
	}
}

// member returns the named struct member, or a zero value when absent.
func (v rpcValue) member(name string) rpcValue {
	for _, m := range v.Struct {
		if m.Name == name {
			return m.Value
		}
	}
	return rpcValue{}
}
